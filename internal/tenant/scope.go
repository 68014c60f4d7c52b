// Package tenant resolves the active shop scope for a request. Every domain
// operation runs under a TenantScope; repositories never see an unscoped call.
package tenant

import (
	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

// Scope is the tenant binding of one request. For a non-global scope every
// query and write is constrained to ShopID. A global scope exists only for a
// super operator without a selected shop: reads span all shops and mutations
// must name an explicit target shop.
type Scope struct {
	ShopID   *int64
	Role     models.Role
	IsGlobal bool
}

// Resolve derives the scope from an authenticated principal. boundShop is the
// shop carried by the token; selectedShop is an explicit shop selection a super
// operator may pass per request (e.g. ?shop_id=3), which wins over the token
// binding.
func Resolve(role models.Role, boundShop, selectedShop *int64) (Scope, error) {
	if role == models.RoleSuperOperator {
		if selectedShop != nil {
			return Scope{ShopID: selectedShop, Role: role}, nil
		}
		if boundShop != nil {
			return Scope{ShopID: boundShop, Role: role}, nil
		}
		return Scope{Role: role, IsGlobal: true}, nil
	}
	if boundShop == nil {
		return Scope{}, &domain.AuthorizationError{Reason: domain.ErrMissingTenant.Error()}
	}
	return Scope{ShopID: boundShop, Role: role}, nil
}

// MustShop returns the scoped shop id. Under a global scope it fails with
// ErrShopRequired: mutations and single-shop reads need an explicit target.
func (s Scope) MustShop() (int64, error) {
	if s.ShopID == nil {
		return 0, &domain.AuthorizationError{Reason: domain.ErrShopRequired.Error()}
	}
	return *s.ShopID, nil
}
