package domain

import (
	"errors"
	"time"
)

// ErrProjectNotFound covers both a truly absent project and a project
// owned by someone else. Mutations scoped by owner never reveal which.
var ErrProjectNotFound = errors.New("project not found")

type Project struct {
	ID          string
	Name        string
	Description *string // nil means not set

	// OwnerID is assigned on create and never changes afterwards.
	OwnerID string
	Owner   *User // eager-loaded by the repository when requested

	// Vacancies in insertion order.
	Vacancies []*Vacancy

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vacancy lives and dies with its project: it is created, updated and
// deleted only as part of a project write.
type Vacancy struct {
	ID        string
	ProjectID string
	Title     string

	CreatedAt time.Time
	UpdatedAt time.Time
}
