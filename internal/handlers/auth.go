package handlers

import (
	"net/http"
	"strings"

	"foodgram/internal/apperr"
	applog "foodgram/internal/log"
	"foodgram/models"
)

const (
	sessionUserIDKey = "auth:user:id"
	tokenScheme      = "token"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

// Authenticate resolves the "Authorization: Token <key>" header into a
// session. Requests without the header continue anonymously; an unknown or
// expired token is rejected.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromHeader(r.Header.Get("Authorization"))
		if !ok || sessionManager == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx, err := sessionManager.Load(r.Context(), token)
		if err != nil {
			applog.Error(r.Context(), "failed to load session", "error", err)
			writeJSONError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if sessionManager.GetInt(ctx, sessionUserIDKey) <= 0 {
			applog.Debug(r.Context(), "rejected unknown auth token")
			writeJSONError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthentication rejects anonymous requests with 401.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUserID(r); !ok {
			writeError(w, r, apperr.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Login exchanges an email and password for an auth token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := app.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		app.metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		writeError(w, r, err)
		return
	}

	token, err := issueToken(r, user)
	if err != nil {
		app.metrics.LoginAttempts.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}

	app.metrics.LoginAttempts.WithLabelValues("success").Inc()
	applog.Info(r.Context(), "user logged in", "userID", user.ID)
	writeJSON(w, r, http.StatusOK, loginResponse{AuthToken: token})
}

// Logout destroys the session behind the presented token.
func Logout(w http.ResponseWriter, r *http.Request) {
	if err := sessionManager.Destroy(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	applog.Debug(r.Context(), "auth token destroyed")
	w.WriteHeader(http.StatusNoContent)
}

func issueToken(r *http.Request, user *models.User) (string, error) {
	ctx, err := sessionManager.Load(r.Context(), "")
	if err != nil {
		return "", err
	}
	if err := sessionManager.RenewToken(ctx); err != nil {
		return "", err
	}
	sessionManager.Put(ctx, sessionUserIDKey, int(user.ID))
	token, _, err := sessionManager.Commit(ctx)
	if err != nil {
		return "", err
	}
	return token, nil
}

// currentUserID returns the authenticated user, if any.
func currentUserID(r *http.Request) (uint, bool) {
	if sessionManager == nil {
		return 0, false
	}
	id, ok := sessionUserID(r)
	return id, ok
}

func sessionUserID(r *http.Request) (id uint, ok bool) {
	defer func() {
		// scs panics when the context carries no session.
		if recover() != nil {
			id, ok = 0, false
		}
	}()
	value := sessionManager.GetInt(r.Context(), sessionUserIDKey)
	if value <= 0 {
		return 0, false
	}
	return uint(value), true
}

// viewerID is the authenticated user id or zero for anonymous requests.
func viewerID(r *http.Request) uint {
	id, _ := currentUserID(r)
	return id
}

func tokenFromHeader(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, tokenScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
