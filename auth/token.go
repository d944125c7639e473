package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"github.com/Jhubkonto/recipe-bloc-backend/models"
)

type Claims struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	jwt.RegisteredClaims
}

// CreateAccessToken signs an HS256 token carrying the user's id, valid
// for expiry hours.
func CreateAccessToken(user *models.User, secret string, expiry int) (string, error) {
	expTime := time.Now().Add(time.Hour * time.Duration(expiry))

	claims := &Claims{
		Name: user.Name,
		ID:   user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return t, nil
}

// ExtractIDFromToken verifies the token signature and expiry and returns
// the user id claim.
func ExtractIDFromToken(requestToken string, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(requestToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return claims.ID, nil
}
