package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/washpoint/backend/internal/models"
)

func TestNewViewProgress(t *testing.T) {
	tests := []struct {
		status   models.WashStatus
		progress int
		estimate int
	}{
		{models.WashWaiting, 0, 30},
		{models.WashInProgress, 50, 20},
		{models.WashCompleted, 75, 0},
		{models.WashReadyPickup, 90, 0},
		{models.WashDelivered, 100, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			v := NewView(&models.Order{WashStatus: tt.status})
			assert.Equal(t, tt.progress, v.Progress)
			assert.Equal(t, tt.estimate, v.EstimatedMinutes)
		})
	}
}

func TestNewViewCarriesNoCustomerData(t *testing.T) {
	started := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	o := &models.Order{
		ID:            42,
		WashStatus:    models.WashInProgress,
		ServiceType:   models.ServiceFull,
		PaymentStatus: models.PaymentPending,
		Amount:        120,
		TrackingToken: "tok",
		StartedAt:     &started,
		StaffIDs:      []int64{7},
		Vehicle:       &models.VehicleRef{LicensePlate: "ABC1234", Model: "Corolla", Color: "blue", Type: models.VehicleCar},
		Customer:      &models.CustomerRef{ID: 9, Name: "Ana", Phone: "+5511999999999"},
		PhotosBefore:  []string{"a.jpg"},
		PhotosAfter:   []string{},
	}

	v := NewView(o)
	assert.Equal(t, o.Vehicle, v.Vehicle)
	assert.Equal(t, &started, v.StartedAt)
	assert.Equal(t, []string{"a.jpg"}, v.PhotosBefore)
	// the view type has no customer, amount or staff fields; this test
	// documents that the public payload stays that way
	assert.Equal(t, models.ServiceFull, v.ServiceType)
	assert.Equal(t, models.PaymentPending, v.PaymentStatus, "payment state is part of the public view")
}
