package middleware

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"studentms/internal/common"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginRateLimiter caps failed authentication attempts per client IP inside a
// sliding window. Successful attempts are refunded so legitimate logins are
// never counted. Fails open when Redis is unreachable.
func LoginRateLimiter(rdb *redis.Client, window time.Duration, max int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("ratelimit:auth:%s", clientIP(r))

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				log.Printf("rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, window)
			}
			if count > int64(max) {
				common.RespondWithErrorMessage(w, http.StatusTooManyRequests, common.CodeRateLimited,
					"Too many login attempts, please try again later")
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < http.StatusBadRequest {
				rdb.Decr(r.Context(), key)
			}
		})
	}
}
