package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Recipe struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Address     string             `bson:"address" json:"address"`
	Image       string             `bson:"image" json:"image"`
	Creator     primitive.ObjectID `bson:"creator" json:"creator"`
}

type RecipeUpdateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
