package model

import "github.com/golang-jwt/jwt/v5"

// HostClaims are JWT claims for host authentication
type HostClaims struct {
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

// PlayerClaims are JWT claims for lobby-scoped player tokens
type PlayerClaims struct {
	LobbyCode string `json:"lobbyCode"`
	PlayerID  string `json:"playerId"`
	Nickname  string `json:"nickname"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for host login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token  string `json:"token"`
	HostID string `json:"hostId"`
}

// JoinRequest is the request body for joining a lobby
type JoinRequest struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

// JoinResponse is returned when a player joins a lobby
type JoinResponse struct {
	PlayerID  string `json:"playerId"`
	LobbyCode string `json:"lobbyCode"`
	Token     string `json:"token"`
}
