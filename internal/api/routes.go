// internal/api/routes.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes configura e retorna o roteador Chi
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middlewares globais
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	// CORS para o frontend local
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // Tempo de cache da preflight
	}))

	// Rotas da API
	r.Route("/api", func(r chi.Router) {
		// Endpoints públicos (sem autenticação)
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		// Endpoints protegidos (requerem autenticação)
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.handleMe)

			r.Post("/folders", h.handleCreateFolder)
			r.Get("/folders", h.handleListFolders)
			r.Post("/folders/{id}/verify", h.handleVerifyFolder)
			r.Delete("/folders/{id}", h.handleDeleteFolder)

			r.Post("/evidence", h.handleCreateEvidence)
			r.Get("/evidence/folder/{folderId}", h.handleListFolderEvidence)
			r.Get("/evidence/file/{fileId}", h.handleGetEvidenceFile)
			r.Delete("/evidence/{id}", h.handleDeleteEvidence)
		})
	})

	return r
}
