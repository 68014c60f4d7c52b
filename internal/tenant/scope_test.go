package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

func ptr(v int64) *int64 { return &v }

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		bound    *int64
		selected *int64
		want     Scope
		wantErr  bool
	}{
		{
			name: "super operator without shop is global",
			role: models.RoleSuperOperator,
			want: Scope{Role: models.RoleSuperOperator, IsGlobal: true},
		},
		{
			name:     "super operator with explicit selection",
			role:     models.RoleSuperOperator,
			selected: ptr(3),
			want:     Scope{ShopID: ptr(3), Role: models.RoleSuperOperator},
		},
		{
			name:     "explicit selection wins over token binding",
			role:     models.RoleSuperOperator,
			bound:    ptr(1),
			selected: ptr(3),
			want:     Scope{ShopID: ptr(3), Role: models.RoleSuperOperator},
		},
		{
			name:  "super operator with switched shop",
			role:  models.RoleSuperOperator,
			bound: ptr(7),
			want:  Scope{ShopID: ptr(7), Role: models.RoleSuperOperator},
		},
		{
			name:  "owner uses bound shop",
			role:  models.RoleOwner,
			bound: ptr(2),
			want:  Scope{ShopID: ptr(2), Role: models.RoleOwner},
		},
		{
			name:    "staff without bound shop is rejected",
			role:    models.RoleStaff,
			wantErr: true,
		},
		{
			name:    "owner without bound shop is rejected",
			role:    models.RoleOwner,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.role, tt.bound, tt.selected)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsAuthorization(err), "expected authorization error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.IsGlobal, got.IsGlobal)
			assert.Equal(t, tt.want.Role, got.Role)
			if tt.want.ShopID == nil {
				assert.Nil(t, got.ShopID)
			} else {
				require.NotNil(t, got.ShopID)
				assert.Equal(t, *tt.want.ShopID, *got.ShopID)
			}
		})
	}
}

func TestMustShop(t *testing.T) {
	global := Scope{Role: models.RoleSuperOperator, IsGlobal: true}
	_, err := global.MustShop()
	require.Error(t, err)
	assert.True(t, domain.IsAuthorization(err))

	scoped := Scope{ShopID: ptr(5), Role: models.RoleStaff}
	id, err := scoped.MustShop()
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}
