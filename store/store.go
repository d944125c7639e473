package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Jhubkonto/recipe-bloc-backend/models"
)

// Error kinds surfaced by a Store. Handlers classify with errors.Is and
// map these to HTTP statuses; no driver-level error crosses this boundary.
var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrEmailExists = errors.New("email already exists")

	ErrCreateFailed = errors.New("create failed")
	ErrUpdateFailed = errors.New("update failed")
	ErrDeleteFailed = errors.New("delete failed")
	ErrUnavailable  = errors.New("store unavailable")
)

// ErrCreatorNotFound reports a create whose creator id references no user.
// It matches ErrNotFound under errors.Is.
var ErrCreatorNotFound = fmt.Errorf("creator %w", ErrNotFound)

// RecipeInput carries the fields of a recipe to be created. The image is
// already persisted to disk by the upload step; only its path is stored.
type RecipeInput struct {
	Title       string
	Description string
	Address     string
	Image       string
	Creator     primitive.ObjectID
}

// Store owns recipe and user documents and keeps the two collections
// mutually consistent: recipe.creator references a user if and only if
// that user's recipes array contains the recipe id. Create and delete
// restore this invariant atomically; a failure mid-operation must leave
// neither side applied.
type Store interface {
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	GetRecipesForUser(ctx context.Context, userID string) ([]models.Recipe, error)
	CreateRecipe(ctx context.Context, in RecipeInput) (models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, in models.RecipeUpdateInput, requester primitive.ObjectID) (models.Recipe, error)
	// DeleteRecipe returns the stored image path so the caller can unlink
	// the file after the commit.
	DeleteRecipe(ctx context.Context, id string, requester primitive.ObjectID) (string, error)

	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}
