package coordinator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline-dev/roster-coordinator/backend/internal/coordinator"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func TestPlanTransferShift(t *testing.T) {
	ward := "二病区"
	original := &domain.Shift{
		ID:         21,
		StaffID:    7,
		Date:       date(2024, 5, 20),
		ShiftType:  domain.ShiftTypeAfternoon,
		StartTime:  "14:00:00",
		EndTime:    "22:00:00",
		Department: "急诊科",
		Ward:       &ward,
		WorkType:   domain.WorkTypeRegular,
		Status:     domain.ShiftStatusTransferred,
	}
	transfer := &domain.ShiftTransfer{
		ID:              1,
		FromStaffID:     7,
		ToStaffID:       9,
		OriginalShiftID: 21,
		TransferDate:    date(2024, 5, 20),
		TransferCode:    "TR240518093000",
		Status:          domain.TransferStatusPending,
	}

	now := time.Date(2024, 5, 19, 9, 0, 0, 0, time.UTC)
	shift := coordinator.PlanTransferShift(transfer, original, 3, now)

	assert.Equal(t, int64(9), shift.StaffID)
	assert.Equal(t, date(2024, 5, 20), shift.Date)
	assert.Equal(t, domain.ShiftTypeAfternoon, shift.ShiftType)
	assert.Equal(t, "14:00:00", shift.StartTime)
	assert.Equal(t, "22:00:00", shift.EndTime)
	assert.Equal(t, "急诊科", shift.Department)
	require.NotNil(t, shift.Ward)
	assert.Equal(t, ward, *shift.Ward)
	assert.Equal(t, domain.ShiftStatusConfirmed, shift.Status)
	require.NotNil(t, shift.ConfirmedBy)
	assert.Equal(t, int64(3), *shift.ConfirmedBy)
	require.NotNil(t, shift.ConfirmedAt)
	assert.Equal(t, now, *shift.ConfirmedAt)
	assert.Contains(t, shift.Notes, transfer.TransferCode)
}

func TestCanCreateTransfer(t *testing.T) {
	cases := []struct {
		status  domain.ShiftStatus
		allowed bool
	}{
		{domain.ShiftStatusScheduled, true},
		{domain.ShiftStatusConfirmed, true},
		{domain.ShiftStatusTransferred, false},
		{domain.ShiftStatusCompleted, false},
		{domain.ShiftStatusCancelled, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.allowed, coordinator.CanCreateTransfer(&domain.Shift{Status: tc.status}))
		})
	}
}
