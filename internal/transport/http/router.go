package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbazarov/teamforge/internal/transport/http/handler"
	"github.com/nbazarov/teamforge/internal/transport/http/middleware"
	"github.com/nbazarov/teamforge/internal/usecase"

	sloggin "github.com/samber/slog-gin"
)

// tokenVerifier mirrors the codec's verify side for the auth middleware.
type tokenVerifier interface {
	Verify(raw string) (string, error)
}

// route declares one operation. auth marks routes that require a valid
// token resolving to an existing user; the flag is enforced here, before
// any handler runs.
type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
	auth    bool
}

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	authUsecase *usecase.AuthUsecase,
	tokens tokenVerifier,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Security())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authChain := []gin.HandlerFunc{
		middleware.Auth(tokens),
		middleware.EnsureUser(authUsecase, logger),
	}

	routes := []route{
		{http.MethodPost, "/auth/register", authHandler.Register, false},
		{http.MethodPost, "/auth/login", authHandler.Login, false},
		{http.MethodGet, "/auth/me", authHandler.Me, true},

		// Projects are readable by anyone; every mutation needs an owner.
		{http.MethodGet, "/projects", projectHandler.List, false},
		{http.MethodGet, "/projects/:id", projectHandler.GetByID, false},
		{http.MethodPost, "/projects", projectHandler.Create, true},
		{http.MethodPut, "/projects/:id", projectHandler.Update, true},
		{http.MethodDelete, "/projects", projectHandler.Delete, true},
	}

	for _, rt := range routes {
		if rt.auth {
			r.Handle(rt.method, rt.path, append(append([]gin.HandlerFunc{}, authChain...), rt.handler)...)
			continue
		}
		r.Handle(rt.method, rt.path, rt.handler)
	}

	return r
}
