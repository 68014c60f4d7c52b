package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washpoint/backend/internal/models"
	"github.com/washpoint/backend/internal/tenant"
	"github.com/washpoint/backend/pkg/clock"
)

// daySource filters its fixture by the day it is asked for, the way the SQL
// date bound does, and records the request.
type daySource struct {
	items      map[string][]models.Order
	askedShop  int64
	askedDay   string
	askedCount int
}

func (s *daySource) ListActive(_ context.Context, shopID int64, day string) ([]models.Order, error) {
	s.askedShop = shopID
	s.askedDay = day
	s.askedCount++
	return s.items[day], nil
}

func boardRequest(t *testing.T, source Source, clk clock.Clock) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/board", nil)
	shopID := int64(1)
	c.Set(tenant.ContextScope, tenant.Scope{ShopID: &shopID, Role: models.RoleOwner})

	NewHandler(source, clk).Get(c)
	return w
}

func TestGetBoardRestrictedToToday(t *testing.T) {
	today := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	source := &daySource{items: map[string][]models.Order{
		"2026-03-09": {{ID: 1, ShopID: 1, WashStatus: models.WashWaiting}},
		"2026-03-10": {{ID: 2, ShopID: 1, WashStatus: models.WashWaiting}},
	}}

	w := boardRequest(t, source, clock.Fixed{T: today})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, source.askedCount)
	assert.Equal(t, int64(1), source.askedShop)
	assert.Equal(t, "2026-03-10", source.askedDay, "the board reads only the clock's current day")
	assert.Contains(t, w.Body.String(), `"waiting":1`)
	assert.NotContains(t, w.Body.String(), `"id":1`, "yesterday's leftover order stays off the board")
}
