package router

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// middlewareAPIToken requires "Authorization: Bearer <token>" on every route
// except the public ones. An empty token disables the check.
func middlewareAPIToken(token string, publicEndpoints map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[matchedRoutePath(r)]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			p := strings.Fields(r.Header.Get("Authorization"))
			if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(p[1]), []byte(token)) != 1 {
				writeJSON(w, errorResponse{Message: "Invalid token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
