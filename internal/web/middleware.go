package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
	"github.com/joao-fontenele/coffeeshop/internal/session"
)

type userKey struct{}

func withUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func userFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey{}).(domain.User)
	return user, ok
}

// Middleware is the chain every request passes through.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return middleware.RequestID(
			middleware.RealIP(
				requestLogger(logger)(
					middleware.Recoverer(next),
				),
			),
		)
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// optionalUser attaches the session user when the cookie resolves, and
// serves the request anonymously otherwise.
func (h *Handler) optionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.sessions.Resolve(r.Context(), session.TokenFromRequest(r))
		switch {
		case err == nil:
			r = r.WithContext(withUser(r.Context(), user))
		case errors.Is(err, domain.ErrUnauthenticated):
		default:
			h.logger.Error("failed to resolve session", "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser redirects anonymous requests to the login page.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.sessions.Resolve(r.Context(), session.TokenFromRequest(r))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				if session.TokenFromRequest(r) != "" {
					http.SetCookie(w, h.sessions.ClearCookie())
				}
				redirect(w, r, "/enter_page")
				return
			}
			h.fail(w, r, "resolve session", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// requireWorker must run inside requireUser.
func (h *Handler) requireWorker(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok || !user.IsWorker {
			redirect(w, r, "/lc")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}
