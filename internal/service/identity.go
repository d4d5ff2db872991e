package service

import "context"

// Identity is a player's display data as the platform knows it.
type Identity struct {
	Name   string
	Avatar string
}

// IdentityProvider resolves a player ID to display data. The platform's
// account service implements this; the engine never stores credentials.
type IdentityProvider interface {
	Lookup(ctx context.Context, playerID string) (*Identity, error)
}

// nicknameIdentity is the standalone fallback: players are known only by
// the nickname they joined with, so lookups resolve to nothing and the
// join-time nickname stands.
type nicknameIdentity struct{}

func NewNicknameIdentity() IdentityProvider { return nicknameIdentity{} }

func (nicknameIdentity) Lookup(context.Context, string) (*Identity, error) {
	return nil, nil
}
