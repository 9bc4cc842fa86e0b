package endpoint

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BasicAuth is a http.Handler wrapper that handles Basic Authorization.
// It supports only one pair of username and password.
type BasicAuth struct {
	Handler            http.Handler
	Username, Password string
}

// WithBasicAuth wraps handler with a BasicAuth if userinfo is not empty.
// userinfo is "username:password", or just "username" for an empty password.
func WithBasicAuth(handler http.Handler, userinfo string) http.Handler {
	if userinfo == "" {
		return handler
	}

	username, password, _ := strings.Cut(userinfo, ":")
	return BasicAuth{Handler: handler, Username: username, Password: password}
}

func (a BasicAuth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok || !equal(username, a.Username) || !equal(password, a.Password) {
		w.Header().Add("WWW-Authenticate", `Basic realm="klimozawr"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	a.Handler.ServeHTTP(w, r)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
