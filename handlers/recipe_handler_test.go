package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Jhubkonto/recipe-bloc-backend/auth"
	"github.com/Jhubkonto/recipe-bloc-backend/models"
	"github.com/Jhubkonto/recipe-bloc-backend/store"
)

const testSecret = "test-secret"

type testEnv struct {
	store     *store.Memory
	recipes   *RecipeHandler
	router    *mux.Router
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemory()
	dir := t.TempDir()
	recipes := NewRecipeHandler(st, dir)
	users := NewUserHandler(st, testSecret, 2)

	return &testEnv{
		store:     st,
		recipes:   recipes,
		router:    NewRouter(recipes, users, testSecret, dir),
		uploadDir: dir,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) newUser(t *testing.T, email string) (models.User, string) {
	t.Helper()

	user, err := e.store.CreateUser(context.Background(), models.User{
		Name:     "Max",
		Email:    email,
		Password: "hashed-password",
	})
	require.NoError(t, err)

	token, err := auth.CreateAccessToken(&user, testSecret, 2)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) createRecipe(t *testing.T, token, title, description, address string) recipeBody {
	t.Helper()

	body, contentType := multipartRecipe(t, title, description, address)
	req := httptest.NewRequest(http.MethodPost, "/recipes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := e.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Recipe recipeBody `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Recipe
}

// recipeBody mirrors the wire representation of a recipe.
type recipeBody struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Image       string `json:"image"`
	Creator     string `json:"creator"`
}

func multipartRecipe(t *testing.T, title, description, address string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if title != "" {
		require.NoError(t, w.WriteField("title", title))
	}
	require.NoError(t, w.WriteField("description", description))
	require.NoError(t, w.WriteField("address", address))

	fw, err := w.CreateFormFile("image", "dish.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

func TestCreateRecipeAndListByUser(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "max@example.com")

	created := env.createRecipe(t, token, "Soup", "Hot soup", "1 Main St")
	assert.Equal(t, user.ID.Hex(), created.Creator)
	assert.Equal(t, "Soup", created.Title)

	// The processed image lands in the upload dir.
	_, err := os.Stat(created.Image)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Image, env.uploadDir))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/recipes/user/"+user.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Recipes []recipeBody `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 1)
	assert.Equal(t, "Soup", resp.Recipes[0].Title)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartRecipe(t, "Soup", "Hot soup", "1 Main St")
	req := httptest.NewRequest(http.MethodPost, "/recipes", body)
	req.Header.Set("Content-Type", contentType)

	rec := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "max@example.com")

	cases := []struct {
		name        string
		title       string
		description string
		address     string
	}{
		{"missing title", "", "Hot soup", "1 Main St"},
		{"short description", "Soup", "Hot", "1 Main St"},
		{"missing address", "Soup", "Hot soup", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartRecipe(t, tc.title, tc.description, tc.address)
			req := httptest.NewRequest(http.MethodPost, "/recipes", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+token)

			rec := env.do(req)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateRecipeUnknownCreator(t *testing.T) {
	env := newTestEnv(t)

	// A valid token whose user id is not in the store.
	ghost := models.User{ID: primitive.NewObjectID(), Name: "Ghost"}
	token, err := auth.CreateAccessToken(&ghost, testSecret, 2)
	require.NoError(t, err)

	body, contentType := multipartRecipe(t, "Soup", "Hot soup", "1 Main St")
	req := httptest.NewRequest(http.MethodPost, "/recipes", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := env.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestGetRecipeNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/recipes/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecipesForUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/recipes/user/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateRecipeOwnership(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.newUser(t, "owner@example.com")
	_, strangerToken := env.newUser(t, "stranger@example.com")

	created := env.createRecipe(t, ownerToken, "Soup", "Hot soup", "1 Main St")
	payload := strings.NewReader(`{"title":"New","description":"abcde"}`)

	// Owner update succeeds.
	req := httptest.NewRequest(http.MethodPatch, "/recipes/"+created.ID, payload)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Recipe recipeBody `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "New", resp.Recipe.Title)
	assert.Equal(t, "abcde", resp.Recipe.Description)

	// A different authenticated user gets 401 and changes nothing.
	req = httptest.NewRequest(http.MethodPatch, "/recipes/"+created.ID,
		strings.NewReader(`{"title":"Hijacked","description":"abcde"}`))
	req.Header.Set("Authorization", "Bearer "+strangerToken)
	rec = env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())

	getRec := env.do(httptest.NewRequest(http.MethodGet, "/recipes/"+created.ID, nil))
	require.Equal(t, http.StatusOK, getRec.Code)
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &resp))
	assert.Equal(t, "New", resp.Recipe.Title)
}

func TestUpdateRecipeValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "max@example.com")
	created := env.createRecipe(t, token, "Soup", "Hot soup", "1 Main St")

	req := httptest.NewRequest(http.MethodPatch, "/recipes/"+created.ID,
		strings.NewReader(`{"title":"","description":"abcde"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := env.do(req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteRecipeFlow(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.newUser(t, "max@example.com")
	created := env.createRecipe(t, token, "Soup", "Hot soup", "1 Main St")

	removed := make(chan string, 1)
	env.recipes.removeFile = func(path string) {
		os.Remove(path)
		removed <- path
	}

	req := httptest.NewRequest(http.MethodDelete, "/recipes/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Deleted recipe."}`, rec.Body.String())

	getRec := env.do(httptest.NewRequest(http.MethodGet, "/recipes/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, getRec.Code)

	userRec := env.do(httptest.NewRequest(http.MethodGet, "/recipes/user/"+user.ID.Hex(), nil))
	assert.Equal(t, http.StatusNotFound, userRec.Code)

	select {
	case path := <-removed:
		assert.Equal(t, created.Image, path)
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	case <-time.After(2 * time.Second):
		t.Fatal("image file was not cleaned up")
	}
}

func TestDeleteRecipeByNonOwner(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.newUser(t, "owner@example.com")
	_, strangerToken := env.newUser(t, "stranger@example.com")
	created := env.createRecipe(t, ownerToken, "Soup", "Hot soup", "1 Main St")

	req := httptest.NewRequest(http.MethodDelete, "/recipes/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+strangerToken)
	rec := env.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	getRec := env.do(httptest.NewRequest(http.MethodGet, "/recipes/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, getRec.Code)
}

func TestDeleteUnknownRecipe(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "max@example.com")

	req := httptest.NewRequest(http.MethodDelete, "/recipes/"+primitive.NewObjectID().Hex(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := env.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
