package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodgram/internal/apperr"
	"foodgram/internal/db/testdb"
	"foodgram/internal/subscriptions"
	"foodgram/internal/users"
	"foodgram/models"
)

type fakeMedia struct{}

func (fakeMedia) SaveImage(_ context.Context, dataURI string) (string, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return "", apperr.Invalid("image", "image is not a valid base64-encoded picture")
	}
	return "recipes/test.jpg", nil
}

func (fakeMedia) DeleteImage(context.Context, string) error { return nil }

func (fakeMedia) URL(key string) string { return "/media/" + key }

// setupAPI configures the handlers against a fresh database.
func setupAPI(t *testing.T) *gorm.DB {
	t.Helper()
	db := testdb.New(t)
	Configure(scs.New(), db, WithPasswordHashCost(bcrypt.MinCost), WithMedia(fakeMedia{}))
	t.Cleanup(func() { Configure(nil, nil) })
	return db
}

// route mounts a single handler the way the server does, behind Authenticate.
type route struct {
	method    string
	pattern   string
	handler   http.HandlerFunc
	protected bool
}

func serve(t *testing.T, rt route, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Use(Authenticate)
	var h http.Handler = rt.handler
	if rt.protected {
		h = RequireAuthentication(h)
	}
	router.Method(rt.method, rt.pattern, h)

	var payload bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			payload.WriteString(raw)
		} else if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(rt.method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// signUp registers a user and logs them in, returning the user and token.
func signUp(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	password := "sourdough-" + username
	user, err := app.users.Register(context.Background(), users.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Cook",
		Password:  password,
	})
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}

	rec := serve(t, route{http.MethodPost, "/api/auth/token/login", Login, false}, "/api/auth/token/login", "",
		loginRequest{Email: user.Email, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}
	return user, decode[loginResponse](t, rec).AuthToken
}

type recipeFixture struct {
	tag        models.Tag
	ingredient models.Ingredient
}

func seedReference(t *testing.T, db *gorm.DB) recipeFixture {
	t.Helper()
	return recipeFixture{
		tag:        testdb.CreateTag(t, db, "Breakfast"),
		ingredient: testdb.CreateIngredient(t, db, "egg", "pcs"),
	}
}

func (f recipeFixture) payload(name string) map[string]any {
	return map[string]any{
		"name":         name,
		"text":         "Whisk and fry.",
		"cooking_time": 10,
		"image":        "data:image/png;base64,AAAA",
		"ingredients":  []map[string]any{{"id": f.ingredient.ID, "amount": 2}},
		"tags":         []uint{f.tag.ID},
	}
}

var (
	createRecipeRoute = route{http.MethodPost, "/api/recipes", CreateRecipe, true}
	getRecipeRoute    = route{http.MethodGet, "/api/recipes/{id}", GetRecipe, false}
	listRecipesRoute  = route{http.MethodGet, "/api/recipes", ListRecipes, false}
)

func createRecipe(t *testing.T, token string, body map[string]any) recipeResponse {
	t.Helper()
	rec := serve(t, createRecipeRoute, "/api/recipes", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create recipe failed with %d: %s", rec.Code, rec.Body.String())
	}
	return decode[recipeResponse](t, rec)
}

func TestLoginMeLogoutFlow(t *testing.T) {
	setupAPI(t)
	user, token := signUp(t, "anna")

	meRoute := route{http.MethodGet, "/api/users/me", Me, true}
	rec := serve(t, meRoute, "/api/users/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if me := decode[userResponse](t, rec); me.ID != user.ID || me.Username != "anna" {
		t.Fatalf("unexpected me response %+v", me)
	}

	rec = serve(t, route{http.MethodPost, "/api/auth/token/logout", Logout, true}, "/api/auth/token/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from logout, got %d", rec.Code)
	}

	rec = serve(t, meRoute, "/api/users/me", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected destroyed token to be rejected, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setupAPI(t)
	signUp(t, "anna")

	rec := serve(t, route{http.MethodPost, "/login", Login, false}, "/login", "",
		loginRequest{Email: "anna@example.com", Password: "wrong-password"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decode[errorResponse](t, rec); resp.Error != "invalid credentials" {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	rec = serve(t, route{http.MethodPost, "/login", Login, false}, "/login", "", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	setupAPI(t)

	rec := serve(t, createRecipeRoute, "/api/recipes", "", map[string]any{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decode[errorResponse](t, rec); resp.Error != "authentication credentials were not provided" {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	rec = serve(t, listRecipesRoute, "/api/recipes", "forged-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unknown token to be rejected, got %d", rec.Code)
	}
}

func TestCreateUserValidation(t *testing.T) {
	setupAPI(t)
	createRoute := route{http.MethodPost, "/api/users", CreateUser, false}

	rec := serve(t, createRoute, "/api/users", "", map[string]string{
		"email": "bob@example.com", "username": "bob", "first_name": "Bob", "last_name": "Baker", "password": "rye-bread-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); strings.Contains(body, "password") {
		t.Fatalf("password leaked in response: %s", body)
	}

	rec = serve(t, createRoute, "/api/users", "", map[string]string{
		"email": "bob@example.com", "username": "bobby", "first_name": "Bob", "last_name": "Baker", "password": "rye-bread-1",
	})
	resp := decode[errorResponse](t, rec)
	if rec.Code != http.StatusBadRequest || resp.Field != "email" {
		t.Fatalf("expected duplicate email rejection, got %d %+v", rec.Code, resp)
	}

	rec = serve(t, createRoute, "/api/users", "", map[string]string{
		"email": "long@example.com", "username": "long", "first_name": "Long", "last_name": "Word", "password": strings.Repeat("ab", 50),
	})
	resp = decode[errorResponse](t, rec)
	if rec.Code != http.StatusBadRequest || resp.Field != "password" {
		t.Fatalf("expected oversized password rejection, got %d %+v", rec.Code, resp)
	}
}

func TestRecipeLifecycle(t *testing.T) {
	db := setupAPI(t)
	ref := seedReference(t, db)
	_, authorToken := signUp(t, "author")
	_, otherToken := signUp(t, "other")

	created := createRecipe(t, authorToken, ref.payload("Omelette"))
	if created.Image != "/media/recipes/test.jpg" {
		t.Fatalf("unexpected image url %q", created.Image)
	}
	if len(created.Ingredients) != 1 || created.Ingredients[0].Name != "egg" || created.Ingredients[0].Amount != 2 {
		t.Fatalf("unexpected ingredients %+v", created.Ingredients)
	}
	if len(created.Tags) != 1 || created.Tags[0].Slug != "breakfast" {
		t.Fatalf("unexpected tags %+v", created.Tags)
	}

	path := fmt.Sprintf("/api/recipes/%d", created.ID)
	patchRoute := route{http.MethodPatch, "/api/recipes/{id}", UpdateRecipe, true}

	rec := serve(t, patchRoute, path, otherToken, map[string]any{"name": "Stolen"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if resp := decode[errorResponse](t, rec); resp.Error != "you do not have permission to modify this recipe" {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	rec = serve(t, patchRoute, path, authorToken, map[string]any{"cooking_time": 0})
	if resp := decode[errorResponse](t, rec); rec.Code != http.StatusBadRequest || resp.Field != "cooking_time" {
		t.Fatalf("expected cooking time rejection, got %d %+v", rec.Code, resp)
	}

	rec = serve(t, patchRoute, path, authorToken, map[string]any{"name": "Fluffy omelette"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if updated := decode[recipeResponse](t, rec); updated.Name != "Fluffy omelette" || updated.CookingTime != 10 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	deleteRoute := route{http.MethodDelete, "/api/recipes/{id}", DeleteRecipe, true}
	if rec := serve(t, deleteRoute, path, otherToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on foreign delete, got %d", rec.Code)
	}
	if rec := serve(t, deleteRoute, path, authorToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := serve(t, getRecipeRoute, path, "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := serve(t, getRecipeRoute, "/api/recipes/abc", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", rec.Code)
	}
}

func TestCreateRecipeValidationMessages(t *testing.T) {
	db := setupAPI(t)
	ref := seedReference(t, db)
	_, token := signUp(t, "author")

	cases := []struct {
		name    string
		mutate  func(map[string]any)
		field   string
		message string
	}{
		{"no ingredients", func(p map[string]any) { p["ingredients"] = []any{} }, "ingredients", "recipe must contain at least one ingredient"},
		{"duplicate ingredient", func(p map[string]any) {
			p["ingredients"] = []map[string]any{{"id": ref.ingredient.ID, "amount": 1}, {"id": ref.ingredient.ID, "amount": 2}}
		}, "ingredients", fmt.Sprintf("duplicate ingredient %d", ref.ingredient.ID)},
		{"unknown tag", func(p map[string]any) { p["tags"] = []int{999} }, "tags", "tag 999 does not exist"},
		{"bad image", func(p map[string]any) { p["image"] = "hello" }, "image", "image is not a valid base64-encoded picture"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			body := ref.payload("Omelette")
			tt.mutate(body)
			rec := serve(t, createRecipeRoute, "/api/recipes", token, body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			resp := decode[errorResponse](t, rec)
			if resp.Field != tt.field || resp.Error != tt.message {
				t.Fatalf("got %+v, want %s/%s", resp, tt.field, tt.message)
			}
		})
	}
}

func TestCollectionsAndShoppingList(t *testing.T) {
	db := setupAPI(t)
	ref := seedReference(t, db)
	_, authorToken := signUp(t, "author")
	_, shopperToken := signUp(t, "shopper")

	omelette := createRecipe(t, authorToken, ref.payload("Omelette"))
	scrambled := createRecipe(t, authorToken, ref.payload("Scrambled eggs"))

	favoriteAdd := route{http.MethodPost, "/api/recipes/{id}/favorite", AddFavorite, true}
	favoriteRemove := route{http.MethodDelete, "/api/recipes/{id}/favorite", RemoveFavorite, true}
	cartAdd := route{http.MethodPost, "/api/recipes/{id}/shopping_cart", AddToShoppingCart, true}

	favPath := fmt.Sprintf("/api/recipes/%d/favorite", omelette.ID)
	rec := serve(t, favoriteAdd, favPath, shopperToken, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if short := decode[shortRecipeResponse](t, rec); short.ID != omelette.ID || short.Name != "Omelette" {
		t.Fatalf("unexpected short recipe %+v", short)
	}
	rec = serve(t, favoriteAdd, favPath, shopperToken, nil)
	if resp := decode[errorResponse](t, rec); rec.Code != http.StatusBadRequest || resp.Error != "recipe is already in favorites" {
		t.Fatalf("expected duplicate favorite rejection, got %d %+v", rec.Code, resp)
	}

	rec = serve(t, getRecipeRoute, fmt.Sprintf("/api/recipes/%d", omelette.ID), shopperToken, nil)
	if got := decode[recipeResponse](t, rec); !got.IsFavorited || got.IsInShoppingCart {
		t.Fatalf("unexpected flags %+v", got)
	}
	rec = serve(t, getRecipeRoute, fmt.Sprintf("/api/recipes/%d", omelette.ID), "", nil)
	if got := decode[recipeResponse](t, rec); got.IsFavorited {
		t.Fatal("anonymous viewers never see favorites")
	}

	if rec := serve(t, favoriteRemove, favPath, shopperToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = serve(t, favoriteRemove, favPath, shopperToken, nil)
	if resp := decode[errorResponse](t, rec); resp.Error != "recipe is not in favorites" {
		t.Fatalf("unexpected error %+v", resp)
	}
	if rec := serve(t, favoriteAdd, "/api/recipes/999/favorite", shopperToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown recipe, got %d", rec.Code)
	}

	for _, id := range []uint{omelette.ID, scrambled.ID} {
		if rec := serve(t, cartAdd, fmt.Sprintf("/api/recipes/%d/shopping_cart", id), shopperToken, nil); rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 adding to cart, got %d", rec.Code)
		}
	}

	download := route{http.MethodGet, "/api/recipes/download_shopping_cart", DownloadShoppingCart, true}
	rec = serve(t, download, "/api/recipes/download_shopping_cart", shopperToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "shopping_list.txt") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if body := rec.Body.String(); body != "egg (pcs) - 4\n" {
		t.Fatalf("unexpected shopping list %q", body)
	}

	rec = serve(t, listRecipesRoute, "/api/recipes?is_in_shopping_cart=1", "", nil)
	if env := decode[struct {
		Count int64 `json:"count"`
	}](t, rec); env.Count != 0 {
		t.Fatalf("anonymous cart filter should be empty, got %d", env.Count)
	}
	rec = serve(t, listRecipesRoute, "/api/recipes?is_in_shopping_cart=1&limit=1", shopperToken, nil)
	env := decode[struct {
		Count   int64            `json:"count"`
		Next    *string          `json:"next"`
		Results []recipeResponse `json:"results"`
	}](t, rec)
	if env.Count != 2 || len(env.Results) != 1 || env.Next == nil || !env.Results[0].IsInShoppingCart {
		t.Fatalf("unexpected cart listing %+v", env)
	}
}

func TestSubscriptionsEndpoints(t *testing.T) {
	db := setupAPI(t)
	ref := seedReference(t, db)
	author, authorToken := signUp(t, "author")
	reader, readerToken := signUp(t, "reader")

	createRecipe(t, authorToken, ref.payload("Omelette"))
	createRecipe(t, authorToken, ref.payload("Frittata"))

	subscribe := route{http.MethodPost, "/api/users/{id}/subscribe", Subscribe, true}
	unsubscribe := route{http.MethodDelete, "/api/users/{id}/subscribe", Unsubscribe, true}
	path := fmt.Sprintf("/api/users/%d/subscribe?recipes_limit=1", author.ID)

	rec := serve(t, subscribe, path, readerToken, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	sub := decode[subscriptionResponse](t, rec)
	if !sub.IsSubscribed || sub.RecipesCount != 2 || len(sub.Recipes) != 1 {
		t.Fatalf("unexpected subscription response %+v", sub)
	}

	rec = serve(t, subscribe, path, readerToken, nil)
	if resp := decode[errorResponse](t, rec); resp.Error != "you are already subscribed to this author" {
		t.Fatalf("unexpected error %+v", resp)
	}
	rec = serve(t, subscribe, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), readerToken, nil)
	if resp := decode[errorResponse](t, rec); resp.Error != "you cannot subscribe to yourself" {
		t.Fatalf("unexpected error %+v", resp)
	}

	userRoute := route{http.MethodGet, "/api/users/{id}", GetUser, false}
	rec = serve(t, userRoute, fmt.Sprintf("/api/users/%d", author.ID), readerToken, nil)
	if got := decode[userResponse](t, rec); !got.IsSubscribed {
		t.Fatal("expected is_subscribed for follower")
	}
	rec = serve(t, userRoute, fmt.Sprintf("/api/users/%d", author.ID), "", nil)
	if got := decode[userResponse](t, rec); got.IsSubscribed {
		t.Fatal("anonymous viewers are never subscribed")
	}

	listRoute := route{http.MethodGet, "/api/users/subscriptions", ListSubscriptions, true}
	rec = serve(t, listRoute, "/api/users/subscriptions", readerToken, nil)
	list := decode[struct {
		Count   int64                  `json:"count"`
		Results []subscriptionResponse `json:"results"`
	}](t, rec)
	if list.Count != 1 || list.Results[0].ID != author.ID || len(list.Results[0].Recipes) != 2 {
		t.Fatalf("unexpected subscriptions list %+v", list)
	}

	rec = serve(t, listRoute, "/api/users/subscriptions?recipes_limit=0", readerToken, nil)
	if !strings.Contains(rec.Body.String(), `"recipes":[]`) {
		t.Fatalf("expected an empty recipes array for recipes_limit=0: %s", rec.Body.String())
	}
	empty := decode[struct {
		Results []subscriptionResponse `json:"results"`
	}](t, rec)
	if len(empty.Results) != 1 || len(empty.Results[0].Recipes) != 0 || empty.Results[0].RecipesCount != 2 {
		t.Fatalf("unexpected subscriptions list for recipes_limit=0 %+v", empty)
	}

	if rec := serve(t, unsubscribe, fmt.Sprintf("/api/users/%d/subscribe", author.ID), readerToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = serve(t, unsubscribe, fmt.Sprintf("/api/users/%d/subscribe", author.ID), readerToken, nil)
	if resp := decode[errorResponse](t, rec); resp.Error != "you are not subscribed to this author" {
		t.Fatalf("unexpected error %+v", resp)
	}
}

func TestReferenceDataEndpoints(t *testing.T) {
	db := setupAPI(t)
	seedReference(t, db)
	testdb.CreateIngredient(t, db, "Eggplant", "g")
	testdb.CreateIngredient(t, db, "milk", "ml")

	rec := serve(t, route{http.MethodGet, "/api/ingredients", ListIngredients, false}, "/api/ingredients?name=EG", "", nil)
	ingredients := decode[[]ingredientResponse](t, rec)
	if len(ingredients) != 2 {
		t.Fatalf("expected two prefix matches, got %+v", ingredients)
	}

	rec = serve(t, route{http.MethodGet, "/api/tags", ListTags, false}, "/api/tags", "", nil)
	tags := decode[[]tagResponse](t, rec)
	if len(tags) != 1 || tags[0].Slug != "breakfast" {
		t.Fatalf("unexpected tags %+v", tags)
	}

	rec = serve(t, route{http.MethodGet, "/api/tags/{id}", GetTag, false}, "/api/tags/42", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSetPassword(t *testing.T) {
	setupAPI(t)
	_, token := signUp(t, "anna")
	setRoute := route{http.MethodPost, "/api/users/set_password", SetPassword, true}

	rec := serve(t, setRoute, "/api/users/set_password", token, users.PasswordChange{CurrentPassword: "nope", NewPassword: "brand-new-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = serve(t, setRoute, "/api/users/set_password", token, users.PasswordChange{CurrentPassword: "sourdough-anna", NewPassword: "brand-new-1"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFlagParam(t *testing.T) {
	t.Parallel()

	cases := map[string]*bool{"1": ptr(true), "true": ptr(true), "0": ptr(false), "false": ptr(false), "": nil, "yes": nil}
	for input, want := range cases {
		got := flagParam(input)
		if (got == nil) != (want == nil) || (got != nil && *got != *want) {
			t.Fatalf("flagParam(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRecipesLimit(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"":                  subscriptions.NoRecipeLimit,
		"?recipes_limit=":   subscriptions.NoRecipeLimit,
		"?recipes_limit=x":  subscriptions.NoRecipeLimit,
		"?recipes_limit=-2": subscriptions.NoRecipeLimit,
		"?recipes_limit=0":  0,
		"?recipes_limit=3":  3,
	}
	for query, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/users/subscriptions"+query, nil)
		if got := recipesLimit(r); got != want {
			t.Fatalf("recipesLimit(%q) = %d, want %d", query, got, want)
		}
	}
}

func TestTokenFromHeader(t *testing.T) {
	t.Parallel()

	if token, ok := tokenFromHeader("Token abc123"); !ok || token != "abc123" {
		t.Fatalf("expected token, got %q %t", token, ok)
	}
	if token, ok := tokenFromHeader("token   xyz "); !ok || token != "xyz" {
		t.Fatalf("expected case-insensitive scheme, got %q %t", token, ok)
	}
	for _, header := range []string{"", "Bearer abc", "Token", "Token   "} {
		if _, ok := tokenFromHeader(header); ok {
			t.Fatalf("expected %q to be rejected", header)
		}
	}
}

func ptr(b bool) *bool { return &b }
