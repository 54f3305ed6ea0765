// Package server implements the HTTP server and routing logic.
package server

import (
	"net/http"

	"github.com/studylenses/studylenses/internal/server/handlers"
	"github.com/studylenses/studylenses/internal/server/ratelimit"
)

// NewRouter creates and configures the HTTP router. API endpoints live under
// /api/*; everything mutating the tree content requires the instructor token,
// while loads and reads are open to learners.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, limits *ratelimit.Config) http.Handler {
	mux := &http.ServeMux{}

	hh := handlers.NewHealthHandler(cfg.Version)
	th := handlers.NewTreeHandler(svc.Session)
	fh := handlers.NewFilesHandler(svc.Session)
	ch := handlers.NewConfigHandler(svc.Session)
	lh := handlers.NewLoadHandler(svc.Session, svc.GitHub)
	authh := handlers.NewAuthHandler(cfg.JWTSecret, cfg.InstructorPasswordHash)
	sch := handlers.NewSchemaHandler()

	mux.Handle("GET /api/health", Wrap(hh.Health, cfg, limits))
	mux.Handle("GET /api/schema", Wrap(sch.Schema, cfg, limits))

	// Tree and file access.
	mux.Handle("GET /api/tree", Wrap(th.Tree, cfg, limits))
	mux.Handle("GET /api/files/{path...}", Wrap(fh.GetFile, cfg, limits))
	mux.Handle("GET /api/config", Wrap(ch.Config, cfg, limits))
	mux.Handle("GET /api/config/{path...}", Wrap(ch.Config, cfg, limits))

	// Lens pinning is a per-session learner preference, not an edit.
	mux.Handle("POST /api/lens/{path...}", Wrap(fh.SetLens, cfg, limits))

	// Tree replacement.
	mux.Handle("POST /api/load/github", Wrap(lh.LoadGitHub, cfg, limits))
	mux.Handle("POST /api/load/gist", Wrap(lh.LoadGist, cfg, limits))
	mux.Handle("POST /api/load/upload", Wrap(lh.LoadUpload, cfg, limits))

	// Instructor endpoints.
	mux.Handle("POST /api/auth/login", Wrap(authh.Login, cfg, limits))
	mux.Handle("PUT /api/files/{path...}", WrapInstructor(fh.UpdateFile, cfg, limits))

	return RequestLogMiddleware(CORSMiddleware(mux))
}
