package coordinator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline-dev/roster-coordinator/backend/internal/coordinator"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func newLeaveRequest(replacementStaffID *int64) *domain.LeaveRequest {
	return &domain.LeaveRequest{
		ID:                 1,
		StaffID:            7,
		LeaveType:          domain.LeaveTypeSick,
		StartDate:          date(2024, 3, 1),
		EndDate:            date(2024, 3, 3),
		Reason:             "发烧",
		RequestCode:        "LV240301080000",
		ReplacementStaffID: replacementStaffID,
		Status:             domain.LeaveStatusPending,
	}
}

func TestPlanLeaveReplacements(t *testing.T) {
	ward := "三病区"
	affected := []*domain.Shift{
		{
			ID:         11,
			StaffID:    7,
			Date:       date(2024, 3, 1),
			ShiftType:  domain.ShiftTypeMorning,
			StartTime:  "08:00:00",
			EndTime:    "16:00:00",
			Department: "内科",
			Ward:       &ward,
			WorkType:   domain.WorkTypeRegular,
			Status:     domain.ShiftStatusConfirmed,
		},
		{
			ID:        12,
			StaffID:   7,
			Date:      date(2024, 3, 2),
			ShiftType: domain.ShiftTypeNight,
			StartTime: "22:00:00",
			EndTime:   "06:00:00",
			WorkType:  domain.WorkTypeHoliday,
			Status:    domain.ShiftStatusScheduled,
		},
	}

	replacementID := int64(9)
	now := time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)
	lr := newLeaveRequest(&replacementID)

	replacements := coordinator.PlanLeaveReplacements(lr, affected, 3, now)
	require.Len(t, replacements, 2)

	first := replacements[0]
	assert.Equal(t, replacementID, first.StaffID)
	assert.Equal(t, date(2024, 3, 1), first.Date)
	assert.Equal(t, domain.ShiftTypeMorning, first.ShiftType)
	assert.Equal(t, "08:00:00", first.StartTime)
	assert.Equal(t, "16:00:00", first.EndTime)
	assert.Equal(t, "内科", first.Department)
	require.NotNil(t, first.Ward)
	assert.Equal(t, ward, *first.Ward)
	assert.Equal(t, domain.WorkTypeRegular, first.WorkType)
	assert.Equal(t, domain.ShiftStatusConfirmed, first.Status)
	require.NotNil(t, first.ConfirmedBy)
	assert.Equal(t, int64(3), *first.ConfirmedBy)
	require.NotNil(t, first.ConfirmedAt)
	assert.Equal(t, now, *first.ConfirmedAt)

	second := replacements[1]
	assert.Equal(t, date(2024, 3, 2), second.Date)
	assert.Equal(t, domain.ShiftTypeNight, second.ShiftType)
	assert.Equal(t, domain.WorkTypeHoliday, second.WorkType)
}

func TestPlanLeaveReplacementsWithoutReplacementStaff(t *testing.T) {
	lr := newLeaveRequest(nil)
	affected := []*domain.Shift{
		{ID: 11, StaffID: 7, Date: date(2024, 3, 1), Status: domain.ShiftStatusConfirmed},
	}

	assert.Empty(t, coordinator.PlanLeaveReplacements(lr, affected, 3, time.Now()))
}

func TestPlanLeaveReplacementsSkipsCancelledShifts(t *testing.T) {
	replacementID := int64(9)
	lr := newLeaveRequest(&replacementID)
	affected := []*domain.Shift{
		{ID: 11, StaffID: 7, Date: date(2024, 3, 1), Status: domain.ShiftStatusCancelled},
		{ID: 12, StaffID: 7, Date: date(2024, 3, 2), Status: domain.ShiftStatusConfirmed},
	}

	replacements := coordinator.PlanLeaveReplacements(lr, affected, 3, time.Now())
	require.Len(t, replacements, 1)
	assert.Equal(t, date(2024, 3, 2), replacements[0].Date)
}

func TestCancelNote(t *testing.T) {
	lr := newLeaveRequest(nil)
	note := coordinator.CancelNote(lr)
	assert.Contains(t, note, lr.RequestCode)
	assert.Contains(t, note, lr.Reason)
}
