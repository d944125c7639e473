package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Jhubkonto/recipe-bloc-backend/auth"
	"github.com/Jhubkonto/recipe-bloc-backend/models"
	"github.com/Jhubkonto/recipe-bloc-backend/store"
)

const requestTimeout = 5 * time.Second

type RecipeHandler struct {
	store     store.Store
	uploadDir string

	// removeFile unlinks a recipe's image after a committed delete.
	// Injectable so tests can observe the fire-and-forget cleanup.
	removeFile func(path string)
}

func NewRecipeHandler(s store.Store, uploadDir string) *RecipeHandler {
	return &RecipeHandler{
		store:      s,
		uploadDir:  uploadDir,
		removeFile: removeImageFile,
	}
}

func removeImageFile(path string) {
	if err := os.Remove(path); err != nil {
		log.Printf("Failed to remove image %s: %v", path, err)
	}
}

// 1. Get Recipe by ID
func (h *RecipeHandler) GetRecipeByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recipe, err := h.store.GetRecipe(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Could not find a recipe for the provided id.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Something went wrong, could not find a recipe.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"recipe": recipe})
}

// 2. Get Recipes by User ID
func (h *RecipeHandler) GetRecipesByUserID(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recipes, err := h.store.GetRecipesForUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Could not find recipes for the provided user id.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Fetching recipes failed, please try again later.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"recipes": recipes})
}

// 3. Create Recipe
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication failed!")
		return
	}

	// 2MB max
	r.Body = http.MaxBytesReader(w, r.Body, 2<<20)
	if err := r.ParseMultipartForm(2 << 20); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "File size exceeds 2MB or invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	address := strings.TrimSpace(r.FormValue("address"))

	if title == "" || len(description) < 5 || address == "" {
		respondError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Image file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		respondError(w, http.StatusUnprocessableEntity, "Only jpg/png allowed")
		return
	}

	imagePath, err := processImage(file, h.uploadDir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not process the uploaded image.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recipe, err := h.store.CreateRecipe(ctx, store.RecipeInput{
		Title:       title,
		Description: description,
		Address:     address,
		Image:       imagePath,
		Creator:     requester,
	})
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Could not find user for provided id.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Creating recipe failed, please try again.")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"recipe": recipe})
}

// 4. Update Recipe (title and description only, author only)
func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication failed!")
		return
	}

	id := mux.Vars(r)["id"]

	var input models.RecipeUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || len(input.Description) < 5 {
		respondError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recipe, err := h.store.UpdateRecipe(ctx, id, input, requester)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Could not find a recipe for the provided id.")
		return
	}
	if errors.Is(err, store.ErrForbidden) {
		respondError(w, http.StatusUnauthorized, "You are not allowed to edit this recipe.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Something went wrong, could not update recipe.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"recipe": recipe})
}

// 5. Delete Recipe (author only)
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication failed!")
		return
	}

	id := mux.Vars(r)["id"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	imagePath, err := h.store.DeleteRecipe(ctx, id, requester)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Could not find recipe for this id.")
		return
	}
	if errors.Is(err, store.ErrForbidden) {
		respondError(w, http.StatusUnauthorized, "You are not allowed to delete this recipe.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Something went wrong, could not delete recipe.")
		return
	}

	// Best-effort cleanup after the commit; never affects the response.
	if imagePath != "" {
		go h.removeFile(imagePath)
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted recipe."})
}
