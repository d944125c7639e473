package store

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Jhubkonto/recipe-bloc-backend/models"
)

// Memory is an in-process Store used by tests. It honors the same
// atomicity contract as the Mongo store: a failed user write during
// create or delete leaves the recipes map untouched.
type Memory struct {
	mu      sync.RWMutex
	recipes map[primitive.ObjectID]models.Recipe
	users   map[primitive.ObjectID]models.User

	userWriteErr error
}

func NewMemory() *Memory {
	return &Memory{
		recipes: make(map[primitive.ObjectID]models.Recipe),
		users:   make(map[primitive.ObjectID]models.User),
	}
}

// FailUserWrites makes every subsequent write to the users side fail with
// err, forcing the surrounding transaction to abort. Pass nil to restore
// normal behavior.
func (s *Memory) FailUserWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userWriteErr = err
}

func (s *Memory) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	_ = ctx

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Recipe{}, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[objID]
	if !ok {
		return models.Recipe{}, ErrNotFound
	}
	return recipe, nil
}

func (s *Memory) GetRecipesForUser(ctx context.Context, userID string) ([]models.Recipe, error) {
	_ = ctx

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[objID]
	if !ok || len(user.Recipes) == 0 {
		return nil, ErrNotFound
	}

	recipes := make([]models.Recipe, 0, len(user.Recipes))
	for _, rid := range user.Recipes {
		if recipe, ok := s.recipes[rid]; ok {
			recipes = append(recipes, recipe)
		}
	}
	if len(recipes) == 0 {
		return nil, ErrNotFound
	}
	return recipes, nil
}

func (s *Memory) CreateRecipe(ctx context.Context, in RecipeInput) (models.Recipe, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[in.Creator]
	if !ok {
		return models.Recipe{}, ErrCreatorNotFound
	}

	recipe := models.Recipe{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Image:       in.Image,
		Creator:     in.Creator,
	}
	s.recipes[recipe.ID] = recipe

	if s.userWriteErr != nil {
		// Abort: roll the recipe insert back so neither side is applied.
		delete(s.recipes, recipe.ID)
		return models.Recipe{}, fmt.Errorf("%w: %v", ErrCreateFailed, s.userWriteErr)
	}

	user.Recipes = append(user.Recipes, recipe.ID)
	s.users[user.ID] = user
	return recipe, nil
}

func (s *Memory) UpdateRecipe(ctx context.Context, id string, in models.RecipeUpdateInput, requester primitive.ObjectID) (models.Recipe, error) {
	_ = ctx

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Recipe{}, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipes[objID]
	if !ok {
		return models.Recipe{}, ErrNotFound
	}
	if recipe.Creator != requester {
		return models.Recipe{}, ErrForbidden
	}

	recipe.Title = in.Title
	recipe.Description = in.Description
	s.recipes[objID] = recipe
	return recipe, nil
}

func (s *Memory) DeleteRecipe(ctx context.Context, id string, requester primitive.ObjectID) (string, error) {
	_ = ctx

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipes[objID]
	if !ok {
		return "", ErrNotFound
	}
	creator, ok := s.users[recipe.Creator]
	if !ok {
		return "", fmt.Errorf("%w: creator document missing", ErrDeleteFailed)
	}
	if creator.ID != requester {
		return "", ErrForbidden
	}

	delete(s.recipes, objID)

	if s.userWriteErr != nil {
		s.recipes[objID] = recipe
		return "", fmt.Errorf("%w: %v", ErrDeleteFailed, s.userWriteErr)
	}

	kept := creator.Recipes[:0]
	for _, rid := range creator.Recipes {
		if rid != objID {
			kept = append(kept, rid)
		}
	}
	creator.Recipes = kept
	s.users[creator.ID] = creator
	return recipe.Image, nil
}

func (s *Memory) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return models.User{}, ErrEmailExists
		}
	}

	user.ID = primitive.NewObjectID()
	if user.Recipes == nil {
		user.Recipes = []primitive.ObjectID{}
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Memory) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}
