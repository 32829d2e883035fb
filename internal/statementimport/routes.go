package statementimport

import (
	"net/http"

	"github.com/EmpoweredVote/Ledger-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(verifier))

		r.Get("/", h.ListBatches)
		r.Post("/preview", h.Preview)
		r.Post("/commit", h.Commit)
	})

	return r
}
