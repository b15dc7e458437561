package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func TestShiftStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.ShiftStatus
		to      domain.ShiftStatus
		allowed bool
	}{
		{"排班中的班次可以确认", domain.ShiftStatusScheduled, domain.ShiftStatusConfirmed, true},
		{"排班中的班次可以取消", domain.ShiftStatusScheduled, domain.ShiftStatusCancelled, true},
		{"已确认的班次可以完成", domain.ShiftStatusConfirmed, domain.ShiftStatusCompleted, true},
		{"已确认的班次可以转入换班", domain.ShiftStatusConfirmed, domain.ShiftStatusTransferred, true},
		{"换班中的班次只能回到已确认", domain.ShiftStatusTransferred, domain.ShiftStatusConfirmed, true},
		{"换班中的班次不能直接完成", domain.ShiftStatusTransferred, domain.ShiftStatusCompleted, false},
		{"换班中的班次不能取消", domain.ShiftStatusTransferred, domain.ShiftStatusCancelled, false},
		{"已完成的班次是终态", domain.ShiftStatusCompleted, domain.ShiftStatusCancelled, false},
		{"已完成的班次不能回到已确认", domain.ShiftStatusCompleted, domain.ShiftStatusConfirmed, false},
		{"已取消的班次是终态", domain.ShiftStatusCancelled, domain.ShiftStatusScheduled, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestShiftStatusIsActive(t *testing.T) {
	assert.True(t, domain.ShiftStatusScheduled.IsActive())
	assert.True(t, domain.ShiftStatusConfirmed.IsActive())
	assert.True(t, domain.ShiftStatusCompleted.IsActive())
	assert.True(t, domain.ShiftStatusTransferred.IsActive())
	assert.False(t, domain.ShiftStatusCancelled.IsActive())
}

func TestLeaveStatusIsTerminal(t *testing.T) {
	assert.False(t, domain.LeaveStatusPending.IsTerminal())
	assert.True(t, domain.LeaveStatusApproved.IsTerminal())
	assert.True(t, domain.LeaveStatusRejected.IsTerminal())
	assert.True(t, domain.LeaveStatusCancelled.IsTerminal())
}
