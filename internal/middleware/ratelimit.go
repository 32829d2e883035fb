package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/EmpoweredVote/Ledger-Backend/internal/utils"
	"golang.org/x/time/rate"
)

// RateLimit caps requests per authenticated user. It must run after
// AuthMiddleware; requests without a user share one anonymous bucket.
func RateLimit(perMinute, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
		every    = rate.Every(time.Minute / time.Duration(perMinute))
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(every, burst)
			limiters[key] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := utils.GetUserIDFromContext(r.Context())

			res := limiterFor(userID).Reserve()
			if d := res.Delay(); d > 0 {
				res.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(d.Seconds())+1))
				utils.WriteError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
