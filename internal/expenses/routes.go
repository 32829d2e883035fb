package expenses

import (
	"net/http"

	"github.com/EmpoweredVote/Ledger-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(verifier))

		r.Get("/", h.ListExpenses)
		r.Post("/", h.CreateExpense)
		r.Get("/summary", h.GetSummary)
		r.Get("/export", h.ExportCSV)
		r.Get("/{id}", h.GetExpense)
		r.Put("/{id}", h.UpdateExpense)
		r.Delete("/{id}", h.DeleteExpense)
	})

	return r
}

func SetupSubcategoryRoutes(h *Handler, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(verifier))

		r.Get("/", h.ListSubcategories)
		r.Post("/", h.CreateSubcategory)
	})

	return r
}
