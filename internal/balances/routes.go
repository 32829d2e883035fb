package balances

import (
	"net/http"

	"github.com/EmpoweredVote/Ledger-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(verifier))

		r.Get("/", h.GetBalance)
		r.Put("/", h.PutBalance)
		r.Delete("/", h.DeleteBalance)
		r.Get("/remaining", h.GetRemaining)
	})

	return r
}
