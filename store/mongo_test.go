package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jhubkonto/recipe-bloc-backend/models"
)

// Transactions need a replica set, so this test only runs against a
// database provided via MONGODB_TEST_URI.
func newMongoStore(t *testing.T) *Mongo {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set, skipping Mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	dbName := "recipe_db_test"
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return NewMongo(client, dbName)
}

func TestMongoCreateAndDeleteRoundTrip(t *testing.T) {
	s := newMongoStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, models.User{
		Name:     "Max",
		Email:    "max@example.com",
		Password: "hashed-password",
	})
	require.NoError(t, err)

	recipe, err := s.CreateRecipe(ctx, RecipeInput{
		Title:       "Soup",
		Description: "Hot soup",
		Address:     "1 Main St",
		Image:       "/tmp/a.png",
		Creator:     user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, recipe.Creator)

	recipes, err := s.GetRecipesForUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, recipe.ID, recipes[0].ID)

	imagePath, err := s.DeleteRecipe(ctx, recipe.ID.Hex(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.png", imagePath)

	_, err = s.GetRecipe(ctx, recipe.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetRecipesForUser(ctx, user.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoOwnershipChecks(t *testing.T) {
	s := newMongoStore(t)
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, models.User{Name: "Max", Email: "owner@example.com", Password: "h"})
	require.NoError(t, err)
	stranger, err := s.CreateUser(ctx, models.User{Name: "Eve", Email: "stranger@example.com", Password: "h"})
	require.NoError(t, err)

	recipe, err := s.CreateRecipe(ctx, RecipeInput{
		Title:       "Soup",
		Description: "Hot soup",
		Address:     "1 Main St",
		Image:       "/tmp/a.png",
		Creator:     owner.ID,
	})
	require.NoError(t, err)

	_, err = s.UpdateRecipe(ctx, recipe.ID.Hex(), models.RecipeUpdateInput{Title: "X", Description: "abcde"}, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.DeleteRecipe(ctx, recipe.ID.Hex(), stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := s.GetRecipe(ctx, recipe.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Title)
}
