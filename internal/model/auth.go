package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims is the JWT payload for an anonymous player identity.
type PlayerClaims struct {
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// RegisterResponse is returned when a new anonymous identity is minted.
type RegisterResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}
