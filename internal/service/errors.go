package service

import "errors"

// Validation errors are reported to the requester only; the session is
// left unchanged.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLobbyFull       = errors.New("lobby is full")
	ErrAlreadyStarted  = errors.New("game already started")
	ErrNotStarted      = errors.New("game is not active")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrNotHost         = errors.New("only the host can do that")
	ErrNotDrawer       = errors.New("only the designated drawer can draw")
	ErrNotParticipant  = errors.New("you are not playing in this game")
	ErrBadStart        = errors.New("invalid start parameters")

	// ErrConflict means the session changed under a concurrent request;
	// the action was rejected without partial effects and can be retried.
	ErrConflict = errors.New("session busy, retry")
)
