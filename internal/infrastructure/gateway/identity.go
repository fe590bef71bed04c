package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application/ports"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
)

// IdentityClient talks to the users resource of the identity service.
type IdentityClient struct {
	c *Client
}

var _ ports.IdentityGateway = (*IdentityClient)(nil)

func NewIdentityClient(c *Client) *IdentityClient {
	return &IdentityClient{c: c}
}

func (g *IdentityClient) GetUser(ctx context.Context, id int64) (*identity.UserProfile, error) {
	var dto userDTO
	err := g.c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/" + strconv.FormatInt(id, 10),
		endpoint: "get_user",
		out:      &dto,
		notFound: identity.ErrNotFound,
	})
	if err != nil {
		return nil, err
	}
	u := dto.toDomain()
	return &u, nil
}

func (g *IdentityClient) ListUsers(ctx context.Context) ([]identity.UserProfile, error) {
	var dtos []userDTO
	err := g.c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "list_users",
		out:      &dtos,
	})
	if err != nil {
		return nil, err
	}
	out := make([]identity.UserProfile, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}
