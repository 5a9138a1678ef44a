package usecase_test

import (
	"context"
	"fmt"
	"slices"

	"github.com/nbazarov/teamforge/internal/domain"
	"github.com/nbazarov/teamforge/internal/repository"
)

// memRepo is an in-memory ProjectRepository with real transaction
// semantics: WithTx snapshots the state and restores it when fn fails, so
// rollback behavior can be asserted.
type memRepo struct {
	seq          int
	users        map[string]*domain.User
	projects     map[string]*domain.Project // scalars only, relations hydrated on read
	projectOrder []string
	vacancies    map[string]*domain.Vacancy
	vacancyOrder []string

	// insertVacancyErr, when set, is consulted on every insert to inject
	// mid-transaction failures.
	insertVacancyErr func(title string) error
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:     make(map[string]*domain.User),
		projects:  make(map[string]*domain.Project),
		vacancies: make(map[string]*domain.Vacancy),
	}
}

func (r *memRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *memRepo) addUser(name, email string) *domain.User {
	u := &domain.User{ID: r.nextID("user"), Name: name, Email: email}
	r.users[u.ID] = u
	return u
}

func (r *memRepo) hydrate(p *domain.Project) *domain.Project {
	out := *p
	out.Owner = r.users[p.OwnerID]
	out.Vacancies = nil
	for _, id := range r.vacancyOrder {
		v := r.vacancies[id]
		if v != nil && v.ProjectID == p.ID {
			vc := *v
			out.Vacancies = append(out.Vacancies, &vc)
		}
	}
	return &out
}

func (r *memRepo) FindOne(_ context.Context, in repository.FindProjectInput) (*domain.Project, error) {
	p, ok := r.projects[in.ID]
	if !ok || (in.OwnerID != nil && p.OwnerID != *in.OwnerID) {
		return nil, domain.ErrProjectNotFound
	}
	return r.hydrate(p), nil
}

func (r *memRepo) Find(_ context.Context, in repository.FindProjectsInput) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, id := range r.projectOrder {
		p, ok := r.projects[id]
		if !ok {
			continue
		}
		if len(in.IDs) > 0 && !slices.Contains(in.IDs, p.ID) {
			continue
		}
		if in.OwnerID != nil && p.OwnerID != *in.OwnerID {
			continue
		}
		out = append(out, r.hydrate(p))
	}
	return out, nil
}

func (r *memRepo) Delete(_ context.Context, ownerID string, ids []string) (int64, error) {
	var affected int64
	for _, id := range ids {
		p, ok := r.projects[id]
		if !ok || p.OwnerID != ownerID {
			continue
		}
		delete(r.projects, id)
		for vid, v := range r.vacancies {
			if v.ProjectID == id {
				delete(r.vacancies, vid)
			}
		}
		affected++
	}
	return affected, nil
}

type memSnapshot struct {
	projects     map[string]*domain.Project
	projectOrder []string
	vacancies    map[string]*domain.Vacancy
	vacancyOrder []string
}

func (r *memRepo) snapshot() memSnapshot {
	s := memSnapshot{
		projects:     make(map[string]*domain.Project, len(r.projects)),
		projectOrder: slices.Clone(r.projectOrder),
		vacancies:    make(map[string]*domain.Vacancy, len(r.vacancies)),
		vacancyOrder: slices.Clone(r.vacancyOrder),
	}
	for id, p := range r.projects {
		pc := *p
		s.projects[id] = &pc
	}
	for id, v := range r.vacancies {
		vc := *v
		s.vacancies[id] = &vc
	}
	return s
}

func (r *memRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.ProjectTx) error) error {
	snap := r.snapshot()
	if err := fn(ctx, &memTx{r: r}); err != nil {
		r.projects = snap.projects
		r.projectOrder = snap.projectOrder
		r.vacancies = snap.vacancies
		r.vacancyOrder = snap.vacancyOrder
		return err
	}
	return nil
}

type memTx struct {
	r *memRepo
}

func (t *memTx) SaveProject(_ context.Context, p *domain.Project) (*domain.Project, error) {
	if p.ID == "" {
		stored := &domain.Project{
			ID:          t.r.nextID("project"),
			Name:        p.Name,
			Description: p.Description,
			OwnerID:     p.OwnerID,
		}
		t.r.projects[stored.ID] = stored
		t.r.projectOrder = append(t.r.projectOrder, stored.ID)
		out := *stored
		return &out, nil
	}

	stored, ok := t.r.projects[p.ID]
	if !ok || stored.OwnerID != p.OwnerID {
		return nil, domain.ErrProjectNotFound
	}
	stored.Name = p.Name
	stored.Description = p.Description
	out := *stored
	return &out, nil
}

func (t *memTx) ListVacancies(_ context.Context, projectID string) ([]*domain.Vacancy, error) {
	var out []*domain.Vacancy
	for _, id := range t.r.vacancyOrder {
		v := t.r.vacancies[id]
		if v != nil && v.ProjectID == projectID {
			vc := *v
			out = append(out, &vc)
		}
	}
	return out, nil
}

func (t *memTx) InsertVacancy(_ context.Context, v *domain.Vacancy) (*domain.Vacancy, error) {
	if t.r.insertVacancyErr != nil {
		if err := t.r.insertVacancyErr(v.Title); err != nil {
			return nil, err
		}
	}
	stored := &domain.Vacancy{
		ID:        t.r.nextID("vacancy"),
		ProjectID: v.ProjectID,
		Title:     v.Title,
	}
	t.r.vacancies[stored.ID] = stored
	t.r.vacancyOrder = append(t.r.vacancyOrder, stored.ID)
	out := *stored
	return &out, nil
}

func (t *memTx) UpdateVacancy(_ context.Context, v *domain.Vacancy) (*domain.Vacancy, error) {
	stored, ok := t.r.vacancies[v.ID]
	if !ok || stored.ProjectID != v.ProjectID {
		return nil, domain.ErrProjectNotFound
	}
	stored.Title = v.Title
	out := *stored
	return &out, nil
}

func (t *memTx) DeleteVacancies(_ context.Context, projectID string, ids []string) error {
	for _, id := range ids {
		if v, ok := t.r.vacancies[id]; ok && v.ProjectID == projectID {
			delete(t.r.vacancies, id)
		}
	}
	return nil
}
