// Package access maps an authenticated principal to the operations it may
// perform on carts and orders.
//
// Authorization is two-layered: scopes gate which endpoints a role may reach,
// and ownership predicates decide whether the principal may act on a concrete
// resource.
package access

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

type Role string

const (
	RoleShop      Role = "shop"
	RoleAdmin     Role = "admin"
	RoleHeadAdmin Role = "head_admin"
)

type Scope string

const (
	ScopeCartManage     Scope = "cart:manage"
	ScopeOrderPlace     Scope = "order:place"
	ScopeOrderReadOwn   Scope = "order:read:own"
	ScopeOrderCancelOwn Scope = "order:cancel:own"
	ScopeOrderFulfil    Scope = "order:fulfil"
	ScopeOrderReadAny   Scope = "order:read:any"
)

var roleScopes = map[Role][]Scope{
	RoleShop:      {ScopeCartManage, ScopeOrderPlace, ScopeOrderReadOwn, ScopeOrderCancelOwn},
	RoleAdmin:     {ScopeOrderFulfil},
	RoleHeadAdmin: {ScopeOrderReadAny},
}

func (r Role) Valid() bool {
	_, ok := roleScopes[r]
	return ok
}

// ScopesFor returns a copy of the scopes granted to a role.
func ScopesFor(role Role) []Scope {
	return slices.Clone(roleScopes[role])
}

type Principal struct {
	ID     uuid.UUID `json:"id"`
	Role   Role      `json:"role"`
	Scopes []Scope   `json:"scopes"`
}

func NewPrincipal(id uuid.UUID, role Role) *Principal {
	return &Principal{ID: id, Role: role, Scopes: ScopesFor(role)}
}

func (p *Principal) Has(scope Scope) bool {
	if p == nil {
		return false
	}

	return slices.Contains(p.Scopes, scope)
}

func (p *Principal) Owns(ownerID uuid.UUID) bool {
	return p != nil && ownerID != uuid.Nil && p.ID == ownerID
}

// CanReadOrder reports whether the principal may view an order placed by
// shopID and fulfilled by adminID.
func CanReadOrder(p *Principal, shopID, adminID uuid.UUID) bool {
	switch {
	case p.Has(ScopeOrderReadAny):
		return true
	case p.Has(ScopeOrderReadOwn) && p.Owns(shopID):
		return true
	case p.Has(ScopeOrderFulfil) && p.Owns(adminID):
		return true
	}

	return false
}

func CanCancelOrder(p *Principal, shopID uuid.UUID) bool {
	return p.Has(ScopeOrderCancelOwn) && p.Owns(shopID)
}

func CanFulfilOrder(p *Principal, adminID uuid.UUID) bool {
	return p.Has(ScopeOrderFulfil) && p.Owns(adminID)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
