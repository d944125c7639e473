package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Jhubkonto/recipe-bloc-backend/auth"
	"github.com/Jhubkonto/recipe-bloc-backend/models"
	"github.com/Jhubkonto/recipe-bloc-backend/store"
)

type UserHandler struct {
	store     store.Store
	jwtSecret string
	jwtExpiry int
}

func NewUserHandler(s store.Store, jwtSecret string, jwtExpiry int) *UserHandler {
	return &UserHandler{store: s, jwtSecret: jwtSecret, jwtExpiry: jwtExpiry}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input models.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" || !strings.Contains(input.Email, "@") || len(input.Password) < 6 {
		respondError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not create user, please try again.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.store.CreateUser(ctx, models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
	})
	if errors.Is(err, store.ErrEmailExists) {
		respondError(w, http.StatusUnprocessableEntity, "User exists already, please login instead.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Signing up failed, please try again later.")
		return
	}

	token, err := auth.CreateAccessToken(&user, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Signing up failed, please try again later.")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"token":  token,
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid inputs passed, please check your data.")
		return
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.store.GetUserByEmail(ctx, input.Email)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials, could not log you in.")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Logging in failed, please try again later.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials, could not log you in.")
		return
	}

	token, err := auth.CreateAccessToken(&user, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Logging in failed, please try again later.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"token":  token,
	})
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	users, err := h.store.ListUsers(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Fetching users failed, please try again later.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
