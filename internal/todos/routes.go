package todos

import (
	"net/http"

	"github.com/EmpoweredVote/Ledger-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(verifier))

		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Delete("/", h.DeleteMany)
		r.Get("/board", h.GetBoard)
		r.Post("/batch", h.CreateBatch)
		r.Put("/reorder", h.Reorder)
		r.Post("/move-pending", h.MovePending)
		r.Post("/sink-done", h.SinkDone)
		r.Put("/context", h.SaveContext)
		r.Patch("/{id}", h.UpdateTodo)
		r.Put("/{id}/date", h.MoveDate)
		r.Delete("/{id}", h.DeleteTodo)
	})

	return r
}
