package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"bingo/models"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	CurrentUserKey ContextKey = "currentUser"
	CSRFTokenKey   ContextKey = "csrfToken"
	AppKey         ContextKey = "app"
)

const sessionCookieName = "bingo_session"

// AppContextMiddleware injects the App dependency into the request context.
func AppContextMiddleware(app App, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), AppKey, app)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFMiddleware protects against Cross-Site Request Forgery attacks.
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		csrfCookie, err := r.Cookie("csrf_token")
		var csrfToken string

		if err != nil || csrfCookie.Value == "" {
			csrfToken = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     "csrf_token",
				Value:    csrfToken,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		} else {
			csrfToken = csrfCookie.Value
		}

		if r.Method == "POST" {
			// This check handles both multipart/form-data and application/x-www-form-urlencoded
			tokenFromForm := r.FormValue("csrf_token")
			if tokenFromForm == "" {
				// For AJAX requests that might not use form values directly
				tokenFromForm = r.Header.Get("X-CSRF-Token")
			}

			if subtle.ConstantTimeCompare([]byte(tokenFromForm), []byte(csrfToken)) != 1 {
				http.Error(w, "Invalid CSRF token", http.StatusForbidden)
				return
			}
		}

		ctx := context.WithValue(r.Context(), CSRFTokenKey, csrfToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware resolves the session cookie to a user and injects it into
// the request context. Requests without a valid session pass through without
// a user; handlers that require one use currentUser.
func SessionMiddleware(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, ok := app.Sessions().Get(cookie.Value)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CurrentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser extracts the authenticated user from the request context.
func currentUser(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(CurrentUserKey).(models.User)
	return user, ok
}

// RequireModerator restricts a route subtree to signed-in moderators.
func RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if !user.IsModerator {
			http.Error(w, "Forbidden: moderator access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
