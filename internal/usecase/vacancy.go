package usecase

import (
	"context"
	"fmt"

	"github.com/nbazarov/teamforge/internal/domain"
	"github.com/nbazarov/teamforge/internal/repository"
)

// VacancyInput is one desired vacancy in a project write. A nil ID means
// the vacancy does not exist yet.
type VacancyInput struct {
	ID    *string
	Title string
}

// VacancyManager reconciles the full desired vacancy set of a project
// against the persisted rows: inserts what is new, updates what is kept,
// deletes what is gone. Callers never address vacancies directly.
type VacancyManager struct{}

func NewVacancyManager() *VacancyManager {
	return &VacancyManager{}
}

// Reconcile runs on the transaction of the surrounding project write, so a
// failing vacancy operation rolls the whole write back.
func (m *VacancyManager) Reconcile(ctx context.Context, tx repository.ProjectTx, projectID string, desired []VacancyInput) error {
	existing, err := tx.ListVacancies(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list vacancies: %w", err)
	}

	existingByID := make(map[string]*domain.Vacancy, len(existing))
	for _, v := range existing {
		existingByID[v.ID] = v
	}

	kept := make(map[string]bool, len(desired))
	for _, d := range desired {
		if d.ID != nil {
			if _, ok := existingByID[*d.ID]; ok {
				if _, err := tx.UpdateVacancy(ctx, &domain.Vacancy{
					ID:        *d.ID,
					ProjectID: projectID,
					Title:     d.Title,
				}); err != nil {
					return fmt.Errorf("update vacancy: %w", err)
				}
				kept[*d.ID] = true
				continue
			}
			// An id this project does not own is ignored; the row is
			// created fresh instead.
		}

		if _, err := tx.InsertVacancy(ctx, &domain.Vacancy{
			ProjectID: projectID,
			Title:     d.Title,
		}); err != nil {
			return fmt.Errorf("insert vacancy: %w", err)
		}
	}

	var stale []string
	for _, v := range existing {
		if !kept[v.ID] {
			stale = append(stale, v.ID)
		}
	}
	return tx.DeleteVacancies(ctx, projectID, stale)
}
