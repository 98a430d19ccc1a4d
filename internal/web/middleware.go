package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/google/uuid"
)

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.Info("request",
			slog.String("id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
		)
	})
}

// withSession resolves the bearer token into the read-only session
// projection and attaches it to the request context. The identity
// snapshot is persisted best-effort the first time a user is seen.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.verifier.Verify(bearerToken(r))
		if sess.Authenticated {
			s.rememberIdentity(r, sess)
		}
		next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
	})
}

func (s *Server) rememberIdentity(r *http.Request, sess session.Session) {
	id := sess.Identity()

	s.mu.Lock()
	last, ok := s.seen[sess.UserID]
	if ok && last == id {
		s.mu.Unlock()
		return
	}
	s.seen[sess.UserID] = id
	s.mu.Unlock()

	if err := s.identities.Save(r.Context(), id); err != nil {
		s.log.Warn("identity snapshot save failed", slog.Any("err", err))
	}
}

func (s *Server) forgetIdentity(userID string) {
	s.mu.Lock()
	delete(s.seen, userID)
	s.mu.Unlock()
}

func bearerToken(r *http.Request) string {
	if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	if c, err := r.Cookie("session"); err == nil {
		return c.Value
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
