package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jhubkonto/recipe-bloc-backend/models"
)

// Mongo implements Store on top of a MongoDB database. Create and delete
// span the recipes and users collections inside a single session
// transaction, so a concurrent reader never observes a recipe without the
// matching user back-reference or vice versa.
type Mongo struct {
	client  *mongo.Client
	recipes *mongo.Collection
	users   *mongo.Collection
}

func NewMongo(client *mongo.Client, dbName string) *Mongo {
	db := client.Database(dbName)
	return &Mongo{
		client:  client,
		recipes: db.Collection("recipes"),
		users:   db.Collection("users"),
	}
}

func (s *Mongo) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never name an existing document.
		return models.Recipe{}, ErrNotFound
	}

	var recipe models.Recipe
	err = s.recipes.FindOne(ctx, bson.M{"_id": objID}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Recipe{}, ErrNotFound
	}
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return recipe, nil
}

func (s *Mongo) GetRecipesForUser(ctx context.Context, userID string) ([]models.Recipe, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	err = s.users.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// A user without recipes is reported the same way as a missing user.
	if len(user.Recipes) == 0 {
		return nil, ErrNotFound
	}

	cursor, err := s.recipes.Find(ctx, bson.M{"_id": bson.M{"$in": user.Recipes}})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	var recipes []models.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(recipes) == 0 {
		return nil, ErrNotFound
	}
	return recipes, nil
}

func (s *Mongo) CreateRecipe(ctx context.Context, in RecipeInput) (models.Recipe, error) {
	err := s.users.FindOne(ctx, bson.M{"_id": in.Creator}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Recipe{}, ErrCreatorNotFound
	}
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	recipe := models.Recipe{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Image:       in.Image,
		Creator:     in.Creator,
	}

	session, err := s.client.StartSession()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}
	defer session.EndSession(ctx)

	insertedID, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := s.recipes.InsertOne(sc, recipe)
		if err != nil {
			return nil, err
		}
		id := res.InsertedID.(primitive.ObjectID)
		_, err = s.users.UpdateOne(sc, bson.M{"_id": in.Creator}, bson.M{"$push": bson.M{"recipes": id}})
		if err != nil {
			return nil, err
		}
		return id, nil
	})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	recipe.ID = insertedID.(primitive.ObjectID)
	return recipe, nil
}

func (s *Mongo) UpdateRecipe(ctx context.Context, id string, in models.RecipeUpdateInput, requester primitive.ObjectID) (models.Recipe, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Recipe{}, ErrNotFound
	}

	var recipe models.Recipe
	err = s.recipes.FindOne(ctx, bson.M{"_id": objID}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Recipe{}, ErrNotFound
	}
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}

	if recipe.Creator != requester {
		return models.Recipe{}, ErrForbidden
	}

	// Only title and description are mutable; address, image and creator
	// are fixed at creation.
	err = s.recipes.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"title": in.Title, "description": in.Description}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&recipe)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	return recipe, nil
}

func (s *Mongo) DeleteRecipe(ctx context.Context, id string, requester primitive.ObjectID) (string, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrNotFound
	}

	var recipe models.Recipe
	err = s.recipes.FindOne(ctx, bson.M{"_id": objID}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	var creator models.User
	err = s.users.FindOne(ctx, bson.M{"_id": recipe.Creator}).Decode(&creator)
	if err != nil {
		// A recipe whose creator document is gone means the invariant is
		// already broken; surface it as a failed delete, not a 404.
		return "", fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	if creator.ID != requester {
		return "", ErrForbidden
	}

	session, err := s.client.StartSession()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.recipes.DeleteOne(sc, bson.M{"_id": objID}); err != nil {
			return nil, err
		}
		_, err := s.users.UpdateOne(sc, bson.M{"_id": creator.ID}, bson.M{"$pull": bson.M{"recipes": objID}})
		if err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	return recipe.Image, nil
}

func (s *Mongo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	count, err := s.users.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}
	if count > 0 {
		return models.User{}, ErrEmailExists
	}

	if user.Recipes == nil {
		user.Recipes = []primitive.ObjectID{}
	}

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrEmailExists
		}
		return models.User{}, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (s *Mongo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return user, nil
}

func (s *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return users, nil
}
