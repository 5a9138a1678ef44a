package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbazarov/teamforge/internal/domain"
	"github.com/nbazarov/teamforge/internal/repository"
)

const (
	projectColumns = `id, name, description, owner_id, created_at, updated_at`
	vacancyColumns = `id, project_id, title, created_at, updated_at`
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so reads can run
// inside or outside a transaction with the same helpers.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) FindOne(ctx context.Context, in repository.FindProjectInput) (*domain.Project, error) {
	args := []any{in.ID}
	where := []string{"id = $1"}

	if in.OwnerID != nil {
		args = append(args, *in.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM projects WHERE %s`,
		projectColumns, strings.Join(where, " AND "))

	p, err := scanProject(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	if err := hydrateProjects(ctx, r.pool, []*domain.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Find(ctx context.Context, in repository.FindProjectsInput) ([]*domain.Project, error) {
	var args []any
	var where []string

	if len(in.IDs) > 0 {
		args = append(args, in.IDs)
		where = append(where, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if in.OwnerID != nil {
		args = append(args, *in.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}

	if err := hydrateProjects(ctx, r.pool, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, ownerID string, ids []string) (int64, error) {
	// Vacancies go with the project via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = ANY($1) AND owner_id = $2`,
		ids, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete projects: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ProjectRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.ProjectTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(ctx, &projectTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// projectTx implements repository.ProjectTx on top of a single pgx.Tx.
type projectTx struct {
	tx pgx.Tx
}

func (t *projectTx) SaveProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if p.ID == "" {
		query := `
			INSERT INTO projects (name, description, owner_id)
			VALUES ($1, $2, $3)
			RETURNING ` + projectColumns
		return scanProject(t.tx.QueryRow(ctx, query, p.Name, p.Description, p.OwnerID))
	}

	// owner_id in the predicate re-verifies ownership as part of the write
	// itself; it is never part of the SET list.
	query := `
		UPDATE projects
		SET    name = $1, description = $2, updated_at = NOW()
		WHERE  id = $3 AND owner_id = $4
		RETURNING ` + projectColumns
	return scanProject(t.tx.QueryRow(ctx, query, p.Name, p.Description, p.ID, p.OwnerID))
}

func (t *projectTx) ListVacancies(ctx context.Context, projectID string) ([]*domain.Vacancy, error) {
	return listVacancies(ctx, t.tx, projectID)
}

func (t *projectTx) InsertVacancy(ctx context.Context, v *domain.Vacancy) (*domain.Vacancy, error) {
	query := `
		INSERT INTO vacancies (project_id, title)
		VALUES ($1, $2)
		RETURNING ` + vacancyColumns
	return scanVacancy(t.tx.QueryRow(ctx, query, v.ProjectID, v.Title))
}

func (t *projectTx) UpdateVacancy(ctx context.Context, v *domain.Vacancy) (*domain.Vacancy, error) {
	query := `
		UPDATE vacancies
		SET    title = $1, updated_at = NOW()
		WHERE  id = $2 AND project_id = $3
		RETURNING ` + vacancyColumns
	return scanVacancy(t.tx.QueryRow(ctx, query, v.Title, v.ID, v.ProjectID))
}

func (t *projectTx) DeleteVacancies(ctx context.Context, projectID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`DELETE FROM vacancies WHERE project_id = $1 AND id = ANY($2)`,
		projectID, ids)
	if err != nil {
		return fmt.Errorf("delete vacancies: %w", err)
	}
	return nil
}

// hydrateProjects eager-loads owners and vacancies for the given projects
// in two batch queries. Relations are always loaded explicitly — there is
// no lazy loading anywhere.
func hydrateProjects(ctx context.Context, q querier, projects []*domain.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]string, 0, len(projects))
	ownerIDs := make([]string, 0, len(projects))
	byID := make(map[string]*domain.Project, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		ownerIDs = append(ownerIDs, p.OwnerID)
		byID[p.ID] = p
	}

	owners, err := q.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ownerIDs)
	if err != nil {
		return fmt.Errorf("load owners: %w", err)
	}
	defer owners.Close()

	ownerByID := make(map[string]*domain.User)
	for owners.Next() {
		u, err := scanUser(owners)
		if err != nil {
			return err
		}
		ownerByID[u.ID] = u
	}
	if err := owners.Err(); err != nil {
		return fmt.Errorf("load owners: %w", err)
	}
	for _, p := range projects {
		p.Owner = ownerByID[p.OwnerID]
	}

	rows, err := q.Query(ctx, `
		SELECT `+vacancyColumns+`
		FROM vacancies
		WHERE project_id = ANY($1)
		ORDER BY seq ASC`, ids)
	if err != nil {
		return fmt.Errorf("load vacancies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return err
		}
		if p, ok := byID[v.ProjectID]; ok {
			p.Vacancies = append(p.Vacancies, v)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load vacancies: %w", err)
	}
	return nil
}

func listVacancies(ctx context.Context, q querier, projectID string) ([]*domain.Vacancy, error) {
	rows, err := q.Query(ctx, `
		SELECT `+vacancyColumns+`
		FROM vacancies
		WHERE project_id = $1
		ORDER BY seq ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	defer rows.Close()

	var vacancies []*domain.Vacancy
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, err
		}
		vacancies = append(vacancies, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	return vacancies, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}

func scanVacancy(row rowScanner) (*domain.Vacancy, error) {
	var v domain.Vacancy
	err := row.Scan(&v.ID, &v.ProjectID, &v.Title, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan vacancy: %w", err)
	}
	return &v, nil
}
