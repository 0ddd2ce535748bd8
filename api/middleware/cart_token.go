package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const cartTokenHeader = "X-Cart-Token"

const maxCartTokenLen = 128

// CartToken reads the guest cart token header into the request context. When
// the client presents none, a fresh token is minted and echoed back so the
// client can persist it; the guest cart slot stays empty until first use.
func CartToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(cartTokenHeader))
			if token == "" || len(token) > maxCartTokenLen {
				token = uuid.NewString()
			}

			w.Header().Set(cartTokenHeader, token)
			ctx := WithCartToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
