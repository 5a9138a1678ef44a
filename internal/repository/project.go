package repository

import (
	"context"

	"github.com/nbazarov/teamforge/internal/domain"
)

// FindProjectInput identifies a single project. A non-nil OwnerID restricts
// the lookup to that owner's projects — mutating operations use it as their
// authorization gate.
type FindProjectInput struct {
	ID      string
	OwnerID *string
}

// FindProjectsInput filters a listing by any supplied subset of fields.
// Zero value means no filter at all.
type FindProjectsInput struct {
	IDs     []string
	OwnerID *string
}

// ProjectTx is a transaction-scoped handle. Everything called on it commits
// or rolls back as one unit, so a project write and its vacancy
// reconciliation can never be persisted partially.
type ProjectTx interface {
	// SaveProject inserts when p.ID is empty. Otherwise it updates the
	// scalar fields with the owner in the predicate; touching a project
	// that is absent or owned by someone else yields
	// domain.ErrProjectNotFound. OwnerID is never updated.
	SaveProject(ctx context.Context, p *domain.Project) (*domain.Project, error)

	ListVacancies(ctx context.Context, projectID string) ([]*domain.Vacancy, error)
	InsertVacancy(ctx context.Context, v *domain.Vacancy) (*domain.Vacancy, error)
	UpdateVacancy(ctx context.Context, v *domain.Vacancy) (*domain.Vacancy, error)
	DeleteVacancies(ctx context.Context, projectID string, ids []string) error
}

type ProjectRepository interface {
	// FindOne eager-loads the owner and the vacancies (insertion order).
	FindOne(ctx context.Context, in FindProjectInput) (*domain.Project, error)
	Find(ctx context.Context, in FindProjectsInput) ([]*domain.Project, error)

	// Delete removes the projects matching both ids and owner and returns
	// how many rows actually went away. Vacancies cascade at the store
	// level.
	Delete(ctx context.Context, ownerID string, ids []string) (int64, error)

	// WithTx runs fn inside one database transaction, rolling back when fn
	// returns an error or panics.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx ProjectTx) error) error
}
