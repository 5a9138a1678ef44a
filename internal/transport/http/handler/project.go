package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nbazarov/teamforge/internal/domain"
	"github.com/nbazarov/teamforge/internal/metrics"
	"github.com/nbazarov/teamforge/internal/repository"
	"github.com/nbazarov/teamforge/internal/transport/http/middleware"
	"github.com/nbazarov/teamforge/internal/usecase"
)

type projectUsecaser interface {
	FindOne(ctx context.Context, in repository.FindProjectInput) (*domain.Project, error)
	Find(ctx context.Context, in repository.FindProjectsInput) ([]*domain.Project, error)
	Create(ctx context.Context, ownerID string, input usecase.CreateProjectInput) (*domain.Project, error)
	Update(ctx context.Context, ownerID string, input usecase.UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, ownerID string, ids []string) (int64, error)
}

type ProjectHandler struct {
	projects projectUsecaser
	logger   *slog.Logger
}

func NewProjectHandler(projects projectUsecaser, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		logger:   logger.With("component", "project_handler"),
	}
}

type vacancyResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type projectResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	OwnerID     string            `json:"owner_id"`
	Owner       *userResponse     `json:"owner,omitempty"`
	Vacancies   []vacancyResponse `json:"vacancies"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	resp := projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		Vacancies:   make([]vacancyResponse, 0, len(p.Vacancies)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Owner != nil {
		owner := toUserResponse(p.Owner)
		resp.Owner = &owner
	}
	for _, v := range p.Vacancies {
		resp.Vacancies = append(resp.Vacancies, vacancyResponse{
			ID:        v.ID,
			ProjectID: v.ProjectID,
			Title:     v.Title,
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		})
	}
	return resp
}

type vacancyRequest struct {
	ID    *string `json:"id"`
	Title string  `json:"title" binding:"required"`
}

func toVacancyInputs(reqs []vacancyRequest) []usecase.VacancyInput {
	inputs := make([]usecase.VacancyInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, usecase.VacancyInput{ID: r.ID, Title: r.Title})
	}
	return inputs
}

// GET /projects/:id
// Public read: no owner scoping.
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	project, err := h.projects.FindOne(c.Request.Context(), repository.FindProjectInput{ID: id})
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("get project", "project_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// GET /projects?ids=...&ids=...&owner_id=...
func (h *ProjectHandler) List(c *gin.Context) {
	var in repository.FindProjectsInput
	if ids := c.QueryArray("ids"); len(ids) > 0 {
		in.IDs = ids
	}
	if ownerID := c.Query("owner_id"); ownerID != "" {
		in.OwnerID = &ownerID
	}

	projects, err := h.projects.Find(c.Request.Context(), in)
	if err != nil {
		h.logger.Error("list projects", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

type createProjectRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description *string          `json:"description"`
	Vacancies   []vacancyRequest `json:"vacancies" binding:"omitempty,dive"`
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := middleware.AuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Create(c.Request.Context(), user.ID, usecase.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Vacancies:   toVacancyInputs(req.Vacancies),
	})
	if err != nil {
		h.logger.Error("create project", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.ProjectWritesTotal.WithLabelValues("create").Inc()
	c.JSON(http.StatusCreated, toProjectResponse(project))
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	// A pointer distinguishes "field absent, leave vacancies alone" from
	// "[]", which wipes them.
	Vacancies *[]vacancyRequest `json:"vacancies" binding:"omitempty,dive"`
}

// PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := middleware.AuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := usecase.UpdateProjectInput{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Vacancies != nil {
		input.Vacancies = toVacancyInputs(*req.Vacancies)
	}

	project, err := h.projects.Update(c.Request.Context(), user.ID, input)
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errProjectNotFound})
			return
		}
		h.logger.Error("update project", "project_id", input.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.ProjectWritesTotal.WithLabelValues("update").Inc()
	c.JSON(http.StatusOK, toProjectResponse(project))
}

type deleteProjectsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type deleteProjectsResponse struct {
	Affected int64 `json:"affected"`
}

// DELETE /projects
// affected counts only rows the caller actually owned; asking to delete
// someone else's project is not an error, it just does not count.
func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := middleware.AuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	var req deleteProjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	affected, err := h.projects.Delete(c.Request.Context(), user.ID, req.IDs)
	if err != nil {
		h.logger.Error("delete projects", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.ProjectWritesTotal.WithLabelValues("delete").Inc()
	c.JSON(http.StatusOK, deleteProjectsResponse{Affected: affected})
}
