package handlers

import (
	"net/http"
	"strconv"

	"foodgram/internal/paging"
	"foodgram/internal/subscriptions"
	"foodgram/internal/users"
)

// ListUsers returns a page of users.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	page := paging.FromQuery(r.URL.Query(), app.rules.PageSize)
	list, total, err := app.users.List(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := userResponses(r.Context(), viewerID(r), list)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, paging.NewEnvelope(r.URL, page, total, results))
}

// CreateUser registers a new account.
func CreateUser(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := app.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, registeredUserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// GetUser returns one user profile.
func GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := app.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	subscribed, err := app.subscriptions.SubscribedTo(r.Context(), viewerID(r), []uint{id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newUserResponse(*user, subscribed[id]))
}

// Me returns the authenticated user.
func Me(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.Get(r.Context(), viewerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newUserResponse(*user, false))
}

// SetPassword changes the authenticated user's password.
func SetPassword(w http.ResponseWriter, r *http.Request) {
	var in users.PasswordChange
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := app.users.ChangePassword(r.Context(), viewerID(r), in); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions returns the authors the authenticated user follows.
func ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	page := paging.FromQuery(r.URL.Query(), app.rules.PageSize)
	entries, total, err := app.subscriptions.List(r.Context(), viewerID(r), page, recipesLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	results := make([]subscriptionResponse, 0, len(entries))
	for _, entry := range entries {
		results = append(results, newSubscriptionResponse(entry))
	}
	writeJSON(w, r, http.StatusOK, paging.NewEnvelope(r.URL, page, total, results))
}

// Subscribe follows the author in the URL.
func Subscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, err)
		return
	}
	author, err := app.subscriptions.Subscribe(r.Context(), viewerID(r), authorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	app.metrics.Subscriptions.WithLabelValues("subscribe").Inc()

	entry, err := app.subscriptions.Describe(r.Context(), *author, recipesLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newSubscriptionResponse(entry))
}

// Unsubscribe stops following the author in the URL.
func Unsubscribe(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "id", "user")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := app.subscriptions.Unsubscribe(r.Context(), viewerID(r), authorID); err != nil {
		writeError(w, r, err)
		return
	}
	app.metrics.Subscriptions.WithLabelValues("unsubscribe").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// recipesLimit reads the optional recipes_limit parameter. An absent or
// malformed value means no limit; zero asks for no recipes at all.
func recipesLimit(r *http.Request) int {
	raw := r.URL.Query().Get("recipes_limit")
	if raw == "" {
		return subscriptions.NoRecipeLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return subscriptions.NoRecipeLimit
	}
	return limit
}
