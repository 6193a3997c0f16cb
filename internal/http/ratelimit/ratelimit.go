// Package ratelimit throttles API requests per client IP.
package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
)

// New builds an in-memory limiter from a rate such as "100-M".
func New(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	return limiter.New(memory.NewStore(), rate), nil
}

// Middleware answers 429 once the client IP has used up its rate.
func Middleware(l *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := l.GetIPKey(r)

			ctx, err := l.Get(r.Context(), ip)
			if err != nil {
				slog.Error("failed to get rate limit context", "ip", ip, "error", err)
				respond.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})

				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))

			if ctx.Reached {
				slog.Warn("rate limit exceeded", "ip", ip, "limit", ctx.Limit)
				respond.JSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
