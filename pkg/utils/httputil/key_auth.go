package httputil

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

type KeyAuthMiddleware struct {
	next http.Handler
	keys []string
}

func UseKeyAuth(keys []string, next http.Handler) *KeyAuthMiddleware {
	return &KeyAuthMiddleware{
		next: next,
		keys: keys,
	}
}

func (m *KeyAuthMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	scheme, key, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || !m.valid(key) {
		rw.Header().Set("WWW-Authenticate", "Bearer")
		RespondJSONStatus(rw, http.StatusUnauthorized, map[string]string{"error": "invalid key"})
		return
	}

	m.next.ServeHTTP(rw, r)
}

// valid compares against every key so the time taken does not reveal which
// key matched.
func (m *KeyAuthMiddleware) valid(key string) bool {
	c := 0
	for _, k := range m.keys {
		c += subtle.ConstantTimeCompare([]byte(k), []byte(key))
	}
	return c > 0
}
