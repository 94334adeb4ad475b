package middleware

import (
	"context"
	"net/http"

	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/auth"
)

const sessionKey contextKey = "session"

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/auth/login"

// Session is middleware that resolves the session cookie and stores the
// session in the request context. Invalid cookies are cleared and the request
// continues without a session.
func Session(sm *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(auth.CookieName); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			s, err := sm.FromRequest(r)
			if err != nil {
				sm.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireAPIAuth rejects requests without a session with a 401 JSON error.
func RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePageAuth redirects requests without a session to the login page.
func RequirePageAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession retrieves the session from the request context, or nil.
func GetSession(ctx context.Context) *auth.Session {
	if s, ok := ctx.Value(sessionKey).(*auth.Session); ok {
		return s
	}
	return nil
}
