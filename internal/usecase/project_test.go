package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nbazarov/teamforge/internal/domain"
	"github.com/nbazarov/teamforge/internal/repository"
	"github.com/nbazarov/teamforge/internal/usecase"
)

func newProjectUsecase(r *memRepo) *usecase.ProjectUsecase {
	return usecase.NewProjectUsecase(r, usecase.NewVacancyManager())
}

func strptr(s string) *string { return &s }

func vacancyTitles(p *domain.Project) []string {
	titles := make([]string, 0, len(p.Vacancies))
	for _, v := range p.Vacancies {
		titles = append(titles, v.Title)
	}
	return titles
}

func TestCreate_ReturnsHydratedAggregate(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	uc := newProjectUsecase(repo)

	p, err := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{
		Name:        "P1",
		Description: strptr("first project"),
		Vacancies:   []usecase.VacancyInput{{Title: "dev"}, {Title: "pm"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.OwnerID != ann.ID {
		t.Errorf("OwnerID = %q, want %q", p.OwnerID, ann.ID)
	}
	if p.Owner == nil || p.Owner.Email != "ann@x.com" {
		t.Error("owner not eager-loaded")
	}
	got := vacancyTitles(p)
	if len(got) != 2 || got[0] != "dev" || got[1] != "pm" {
		t.Errorf("vacancies = %v, want [dev pm] in insertion order", got)
	}
	for _, v := range p.Vacancies {
		if v.ProjectID != p.ID {
			t.Errorf("vacancy %q references project %q, want %q", v.Title, v.ProjectID, p.ID)
		}
	}
}

func TestCreate_VacancyFailure_RollsBackProject(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	repo.insertVacancyErr = func(title string) error {
		if title == "boom" {
			return errors.New("insert failed")
		}
		return nil
	}

	_, err := newProjectUsecase(repo).Create(context.Background(), ann.ID, usecase.CreateProjectInput{
		Name:      "P1",
		Vacancies: []usecase.VacancyInput{{Title: "dev"}, {Title: "boom"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if len(repo.projects) != 0 {
		t.Errorf("project row survived a failed vacancy insert: %d projects", len(repo.projects))
	}
	if len(repo.vacancies) != 0 {
		t.Errorf("vacancy rows survived the rollback: %d vacancies", len(repo.vacancies))
	}
}

func TestUpdate_WrongOwner_MutatesNothing(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	bob := repo.addUser("Bob", "bob@x.com")
	uc := newProjectUsecase(repo)

	p, err := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{
		Name:      "P1",
		Vacancies: []usecase.VacancyInput{{Title: "dev"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = uc.Update(context.Background(), bob.ID, usecase.UpdateProjectInput{
		ID:        p.ID,
		Name:      strptr("stolen"),
		Vacancies: []usecase.VacancyInput{},
	})
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("want ErrProjectNotFound, got %v", err)
	}

	after, err := uc.FindOne(context.Background(), repository.FindProjectInput{ID: p.ID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if after.Name != "P1" {
		t.Errorf("name = %q, project was mutated by a non-owner", after.Name)
	}
	if len(after.Vacancies) != 1 {
		t.Errorf("vacancies = %d, want 1", len(after.Vacancies))
	}
}

func TestUpdate_ReconcilesVacanciesToDesiredSet(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"shrink", 2},
		{"grow", 5},
		{"clear", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepo()
			ann := repo.addUser("Ann", "ann@x.com")
			uc := newProjectUsecase(repo)

			p, err := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{
				Name:      "P1",
				Vacancies: []usecase.VacancyInput{{Title: "dev"}, {Title: "pm"}, {Title: "qa"}},
			})
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			desired := make([]usecase.VacancyInput, 0, tc.want)
			for i := 0; i < tc.want; i++ {
				if i < len(p.Vacancies) {
					// Keep an existing row, rename it in place.
					desired = append(desired, usecase.VacancyInput{
						ID:    &p.Vacancies[i].ID,
						Title: p.Vacancies[i].Title + "-v2",
					})
					continue
				}
				desired = append(desired, usecase.VacancyInput{Title: "new"})
			}

			updated, err := uc.Update(context.Background(), ann.ID, usecase.UpdateProjectInput{
				ID:        p.ID,
				Vacancies: desired,
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}

			if len(updated.Vacancies) != tc.want {
				t.Fatalf("vacancies = %d, want %d", len(updated.Vacancies), tc.want)
			}
			// No orphans: every persisted vacancy belongs to the project.
			if len(repo.vacancies) != tc.want {
				t.Errorf("persisted vacancy rows = %d, want %d", len(repo.vacancies), tc.want)
			}
			for _, v := range repo.vacancies {
				if v.ProjectID != p.ID {
					t.Errorf("orphan vacancy %q references %q", v.ID, v.ProjectID)
				}
			}
		})
	}
}

func TestUpdate_KeptVacancyRetainsID(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	uc := newProjectUsecase(repo)

	p, err := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{
		Name:      "P1",
		Vacancies: []usecase.VacancyInput{{Title: "dev"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	devID := p.Vacancies[0].ID

	updated, err := uc.Update(context.Background(), ann.ID, usecase.UpdateProjectInput{
		ID: p.ID,
		Vacancies: []usecase.VacancyInput{
			{ID: &devID, Title: "senior dev"},
			{Title: "pm"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(updated.Vacancies) != 2 {
		t.Fatalf("vacancies = %d, want 2", len(updated.Vacancies))
	}
	if updated.Vacancies[0].ID != devID {
		t.Errorf("kept vacancy got a new id %q, want %q", updated.Vacancies[0].ID, devID)
	}
	if updated.Vacancies[0].Title != "senior dev" {
		t.Errorf("kept vacancy title = %q, want updated in place", updated.Vacancies[0].Title)
	}
}

func TestUpdate_NilVacancies_LeavesChildrenUntouched(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	uc := newProjectUsecase(repo)

	p, err := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{
		Name:      "P1",
		Vacancies: []usecase.VacancyInput{{Title: "dev"}, {Title: "pm"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := uc.Update(context.Background(), ann.ID, usecase.UpdateProjectInput{
		ID:   p.ID,
		Name: strptr("P1 renamed"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "P1 renamed" {
		t.Errorf("name = %q, want P1 renamed", updated.Name)
	}
	if len(updated.Vacancies) != 2 {
		t.Errorf("vacancies = %d, want 2 (untouched)", len(updated.Vacancies))
	}
}

func TestUpdate_NeverChangesOwner(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	uc := newProjectUsecase(repo)

	p, err := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{Name: "P1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := uc.Update(context.Background(), ann.ID, usecase.UpdateProjectInput{
		ID:   p.ID,
		Name: strptr("P1 v2"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.OwnerID != ann.ID {
		t.Errorf("OwnerID = %q, want unchanged %q", updated.OwnerID, ann.ID)
	}
}

func TestDelete_CountsOnlyOwnedRows(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	bob := repo.addUser("Bob", "bob@x.com")
	uc := newProjectUsecase(repo)

	p1, _ := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{
		Name:      "P1",
		Vacancies: []usecase.VacancyInput{{Title: "dev"}},
	})
	p2, _ := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{Name: "P2"})
	theirs, _ := uc.Create(context.Background(), bob.ID, usecase.CreateProjectInput{Name: "B1"})

	affected, err := uc.Delete(context.Background(), ann.ID, []string{p1.ID, p2.ID, theirs.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}

	// Bob's project is untouched.
	if _, err := uc.FindOne(context.Background(), repository.FindProjectInput{ID: theirs.ID}); err != nil {
		t.Errorf("other owner's project gone: %v", err)
	}
	// Cascade: no vacancy row may still reference a deleted project.
	for _, v := range repo.vacancies {
		if v.ProjectID == p1.ID || v.ProjectID == p2.ID {
			t.Errorf("orphan vacancy %q survives deleted project", v.ID)
		}
	}
}

func TestDelete_ForeignProjectOnly_AffectsZero(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	bob := repo.addUser("Bob", "bob@x.com")
	uc := newProjectUsecase(repo)

	p, _ := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{Name: "P1"})

	affected, err := uc.Delete(context.Background(), bob.ID, []string{p.ID})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if affected != 0 {
		t.Errorf("affected = %d, want 0", affected)
	}
	if _, err := uc.FindOne(context.Background(), repository.FindProjectInput{ID: p.ID}); err != nil {
		t.Errorf("project should still exist: %v", err)
	}
}

func TestFind_FiltersByIDsAndOwner(t *testing.T) {
	repo := newMemRepo()
	ann := repo.addUser("Ann", "ann@x.com")
	bob := repo.addUser("Bob", "bob@x.com")
	uc := newProjectUsecase(repo)

	p1, _ := uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{Name: "P1"})
	uc.Create(context.Background(), ann.ID, usecase.CreateProjectInput{Name: "P2"})
	uc.Create(context.Background(), bob.ID, usecase.CreateProjectInput{Name: "B1"})

	all, err := uc.Find(context.Background(), repository.FindProjectsInput{})
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}

	mine, err := uc.Find(context.Background(), repository.FindProjectsInput{OwnerID: &ann.ID})
	if err != nil {
		t.Fatalf("find by owner: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("owner filter = %d, want 2", len(mine))
	}

	byID, err := uc.Find(context.Background(), repository.FindProjectsInput{IDs: []string{p1.ID}})
	if err != nil {
		t.Fatalf("find by ids: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != p1.ID {
		t.Errorf("ids filter returned %d rows", len(byID))
	}
}
