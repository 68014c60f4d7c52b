package appointments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

func TestApplyTransition(t *testing.T) {
	tests := []struct {
		name    string
		current models.AppointmentStatus
		event   string
		want    models.AppointmentStatus
		wantErr bool
	}{
		{name: "confirm pending", current: models.AppointmentPending, event: EventConfirm, want: models.AppointmentConfirmed},
		{name: "confirm confirmed is a no-op", current: models.AppointmentConfirmed, event: EventConfirm, want: models.AppointmentConfirmed},
		{name: "confirm cancelled fails", current: models.AppointmentCancelled, event: EventConfirm, wantErr: true},
		{name: "confirm completed fails", current: models.AppointmentCompleted, event: EventConfirm, wantErr: true},
		{name: "cancel pending", current: models.AppointmentPending, event: EventCancel, want: models.AppointmentCancelled},
		{name: "cancel confirmed", current: models.AppointmentConfirmed, event: EventCancel, want: models.AppointmentCancelled},
		{name: "cancel cancelled is a no-op", current: models.AppointmentCancelled, event: EventCancel, want: models.AppointmentCancelled},
		{name: "cancel completed fails", current: models.AppointmentCompleted, event: EventCancel, wantErr: true},
		{name: "complete confirmed", current: models.AppointmentConfirmed, event: EventComplete, want: models.AppointmentCompleted},
		{name: "complete pending", current: models.AppointmentPending, event: EventComplete, want: models.AppointmentCompleted},
		{name: "complete cancelled fails", current: models.AppointmentCancelled, event: EventComplete, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyTransition(context.Background(), tt.current, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				var te *domain.TransitionError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.event, te.Event)
				assert.Equal(t, string(tt.current), te.Current)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
