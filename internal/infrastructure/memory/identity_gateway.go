package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
)

type IdentityGateway struct {
	mu    sync.RWMutex
	users map[int64]identity.UserProfile
}

func NewIdentityGateway(seed ...identity.UserProfile) *IdentityGateway {
	g := &IdentityGateway{users: make(map[int64]identity.UserProfile)}
	for _, u := range seed {
		g.Put(u)
	}
	return g
}

func (g *IdentityGateway) Put(u identity.UserProfile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[u.ID] = u
}

func (g *IdentityGateway) GetUser(ctx context.Context, id int64) (*identity.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	u, ok := g.users[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return &u, nil
}

func (g *IdentityGateway) ListUsers(ctx context.Context) ([]identity.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]identity.UserProfile, 0, len(g.users))
	for _, u := range g.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
