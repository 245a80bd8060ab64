package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"financeiro/internal/core"
)

var errNoSessionService = errors.New("session validator not configured")

// SessionValidator decides whether a request carries a valid back office
// session. The session service itself lives outside this module.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

// StaticTokenValidator accepts a single pre-shared token. Used when the
// module runs without the full back office session service.
type StaticTokenValidator struct {
	token string
}

func NewStaticTokenValidator(token string) *StaticTokenValidator {
	return &StaticTokenValidator{token: token}
}

func (v *StaticTokenValidator) Validate(_ context.Context, token string) (bool, error) {
	if v.token == "" || token == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(v.token), []byte(token)) == 1, nil
}

// sessionToken extracts the session token from the Authorization header
// (Bearer scheme) or the X-Session-Token header.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}

// requireSession rejects requests without a valid session. The response is
// the same generic message whether the token is missing, wrong, or the
// validator errored, so callers can't probe the difference.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions == nil {
			writeError(w, r, core.NewError(core.KindUnauthorized, errNoSessionService))
			return
		}

		ok, err := s.sessions.Validate(r.Context(), sessionToken(r))
		if err != nil || !ok {
			writeError(w, r, core.NewError(core.KindUnauthorized, err))
			return
		}

		next(w, r)
	}
}
