package assist

import (
	"net/http"

	"github.com/EmpoweredVote/Ledger-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// rateBurst lets a user retry a capture or two back to back.
const rateBurst = 3

func SetupRoutes(h *Handler, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(verifier))
		if h.RatePerMinute > 0 {
			r.Use(middleware.RateLimit(h.RatePerMinute, rateBurst))
		}

		r.Post("/ocr-tasks", h.OCRTasks)
		r.Post("/voice-expense", h.VoiceExpense)
		r.Post("/voice-todo", h.VoiceTodo)
	})

	return r
}
