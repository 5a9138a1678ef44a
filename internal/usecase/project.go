package usecase

import (
	"context"
	"fmt"

	"github.com/nbazarov/teamforge/internal/domain"
	"github.com/nbazarov/teamforge/internal/repository"
)

type ProjectUsecase struct {
	repo      repository.ProjectRepository
	vacancies *VacancyManager
}

func NewProjectUsecase(repo repository.ProjectRepository, vacancies *VacancyManager) *ProjectUsecase {
	return &ProjectUsecase{repo: repo, vacancies: vacancies}
}

type CreateProjectInput struct {
	Name        string
	Description *string
	Vacancies   []VacancyInput
}

type UpdateProjectInput struct {
	ID          string
	Name        *string
	Description *string
	// Vacancies is the FULL desired set. nil leaves vacancies untouched;
	// an empty slice deletes them all.
	Vacancies []VacancyInput
}

func (u *ProjectUsecase) FindOne(ctx context.Context, in repository.FindProjectInput) (*domain.Project, error) {
	return u.repo.FindOne(ctx, in)
}

func (u *ProjectUsecase) Find(ctx context.Context, in repository.FindProjectsInput) ([]*domain.Project, error) {
	projects, err := u.repo.Find(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	return projects, nil
}

// Create persists the project and its initial vacancies as one transaction
// and returns the hydrated aggregate.
func (u *ProjectUsecase) Create(ctx context.Context, ownerID string, input CreateProjectInput) (*domain.Project, error) {
	var projectID string

	err := u.repo.WithTx(ctx, func(ctx context.Context, tx repository.ProjectTx) error {
		created, err := tx.SaveProject(ctx, &domain.Project{
			Name:        input.Name,
			Description: input.Description,
			OwnerID:     ownerID,
		})
		if err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		projectID = created.ID

		if len(input.Vacancies) > 0 {
			// No existing rows yet, so reconcile degenerates to insert-all.
			return u.vacancies.Reconcile(ctx, tx, created.ID, input.Vacancies)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.repo.FindOne(ctx, repository.FindProjectInput{ID: projectID})
}

// Update mutates nothing unless the owner-scoped fetch succeeds. The scalar
// update inside the transaction carries the owner in its predicate again,
// so a concurrent delete cannot slip in between.
func (u *ProjectUsecase) Update(ctx context.Context, ownerID string, input UpdateProjectInput) (*domain.Project, error) {
	current, err := u.repo.FindOne(ctx, repository.FindProjectInput{ID: input.ID, OwnerID: &ownerID})
	if err != nil {
		return nil, err
	}

	name := current.Name
	if input.Name != nil {
		name = *input.Name
	}
	description := current.Description
	if input.Description != nil {
		description = input.Description
	}

	err = u.repo.WithTx(ctx, func(ctx context.Context, tx repository.ProjectTx) error {
		if _, err := tx.SaveProject(ctx, &domain.Project{
			ID:          input.ID,
			Name:        name,
			Description: description,
			OwnerID:     ownerID,
		}); err != nil {
			return err
		}

		if input.Vacancies != nil {
			return u.vacancies.Reconcile(ctx, tx, input.ID, input.Vacancies)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.repo.FindOne(ctx, repository.FindProjectInput{ID: input.ID})
}

// Delete removes the caller's projects among ids and reports how many rows
// went away. Projects of other owners are simply not counted.
func (u *ProjectUsecase) Delete(ctx context.Context, ownerID string, ids []string) (int64, error) {
	affected, err := u.repo.Delete(ctx, ownerID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete projects: %w", err)
	}
	return affected, nil
}
