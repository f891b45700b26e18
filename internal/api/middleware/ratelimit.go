package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RateLimiter ограничивает число запросов с одного адреса в фиксированном окне.
// limit <= 0 отключает ограничение.
func RateLimiter(limit int, window time.Duration) func(http.Handler) http.Handler {
	counters := gocache.New(window, 2*window)

	return func(next http.Handler) http.Handler {
		if limit <= 0 || window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			count := 1
			if err := counters.Add(key, 1, gocache.DefaultExpiration); err != nil {
				// счетчик окна уже есть, срок жизни при инкременте не меняется
				n, incErr := counters.IncrementInt(key, 1)
				if incErr != nil {
					next.ServeHTTP(w, r)
					return
				}
				count = n
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			if count > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeJSONError(w, r, http.StatusTooManyRequests, "RateLimited", "Too many requests")
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count))

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
