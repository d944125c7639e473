package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Jhubkonto/recipe-bloc-backend/auth"
)

// NewRouter wires the full HTTP surface. jwtSecret guards the three
// mutating recipe endpoints; uploadDir is also served statically.
func NewRouter(recipes *RecipeHandler, users *UserHandler, jwtSecret, uploadDir string) *mux.Router {
	r := mux.NewRouter()

	// Root Route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"message": "Welcome to the Recipe API! Use /recipes to access the data.",
		})
	}).Methods("GET")

	protected := auth.RequireAuth(jwtSecret)

	// Recipe Endpoints. /recipes/user must be registered before
	// /recipes/{id} to avoid matching "user" as an id.
	r.HandleFunc("/recipes/user/{userId}", recipes.GetRecipesByUserID).Methods("GET")
	r.HandleFunc("/recipes/{id}", recipes.GetRecipeByID).Methods("GET")
	r.Handle("/recipes", protected(http.HandlerFunc(recipes.CreateRecipe))).Methods("POST")
	r.Handle("/recipes/{id}", protected(http.HandlerFunc(recipes.UpdateRecipe))).Methods("PATCH")
	r.Handle("/recipes/{id}", protected(http.HandlerFunc(recipes.DeleteRecipe))).Methods("DELETE")

	// User Endpoints
	r.HandleFunc("/users/signup", users.Signup).Methods("POST")
	r.HandleFunc("/users/login", users.Login).Methods("POST")
	r.HandleFunc("/users", users.GetUsers).Methods("GET")

	// Serve uploaded images statically
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	return r
}
