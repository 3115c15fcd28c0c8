// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated actor supplied by the external
// identity provider. This interface abstracts identity extraction from the
// web framework, allowing handlers to access actor information without
// depending on Gin.
type Identity interface {
	// UserID returns the authenticated actor's ID.
	UserID() uuid.UUID
	// Name returns the actor's display name.
	Name() string
	// Role returns the actor's role ("admin" or "rep").
	Role() string
	// AllowedProvinces returns the actor's territory allow-list.
	AllowedProvinces() []string
	// AllowedBrands returns the actor's brand allow-list.
	AllowedBrands() []uuid.UUID
	// IsAuthenticated returns true if the actor is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	userID        uuid.UUID
	name          string
	role          string
	provinces     []string
	brands        []uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID           { return i.userID }
func (i *identity) Name() string                { return i.name }
func (i *identity) Role() string                { return i.role }
func (i *identity) AllowedProvinces() []string  { return i.provinces }
func (i *identity) AllowedBrands() []uuid.UUID  { return i.brands }
func (i *identity) IsAuthenticated() bool       { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if actor info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	out := &identity{userID: uid, authenticated: true}

	if name, ok := c.Get(ContextNameKey); ok {
		out.name, _ = name.(string)
	}
	if role, ok := c.Get(ContextRoleKey); ok {
		out.role, _ = role.(string)
	}
	if provinces, ok := c.Get(ContextProvincesKey); ok {
		out.provinces, _ = provinces.([]string)
	}
	if brands, ok := c.Get(ContextBrandsKey); ok {
		out.brands, _ = brands.([]uuid.UUID)
	}

	return out
}
