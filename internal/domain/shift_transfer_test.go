package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func TestTransferStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.TransferStatus
		to      domain.TransferStatus
		allowed bool
	}{
		{"待审批的申请可以批准", domain.TransferStatusPending, domain.TransferStatusApproved, true},
		{"待审批的申请可以驳回", domain.TransferStatusPending, domain.TransferStatusRejected, true},
		{"待审批的申请可以取消", domain.TransferStatusPending, domain.TransferStatusCancelled, true},
		{"待审批的申请不能直接归档", domain.TransferStatusPending, domain.TransferStatusCompleted, false},
		{"已批准的申请可以归档", domain.TransferStatusApproved, domain.TransferStatusCompleted, true},
		{"已批准的申请不能再驳回", domain.TransferStatusApproved, domain.TransferStatusRejected, false},
		{"已批准的申请不能再取消", domain.TransferStatusApproved, domain.TransferStatusCancelled, false},
		{"已归档的申请不能再次归档", domain.TransferStatusCompleted, domain.TransferStatusCompleted, false},
		{"已驳回的申请是终态", domain.TransferStatusRejected, domain.TransferStatusApproved, false},
		{"已取消的申请是终态", domain.TransferStatusCancelled, domain.TransferStatusApproved, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

// 驳回或取消换班时原班次从 transferred 回到 confirmed，
// 两个状态机的衔接点在这里一并确认
func TestTransferRevertRestoresShift(t *testing.T) {
	assert.True(t, domain.TransferStatusPending.CanTransitionTo(domain.TransferStatusRejected))
	assert.True(t, domain.TransferStatusPending.CanTransitionTo(domain.TransferStatusCancelled))
	assert.True(t, domain.ShiftStatusTransferred.CanTransitionTo(domain.ShiftStatusConfirmed))
	assert.False(t, domain.ShiftStatusTransferred.CanTransitionTo(domain.ShiftStatusCancelled))
}

func TestLeaveStatusCanTransitionTo(t *testing.T) {
	assert.True(t, domain.LeaveStatusPending.CanTransitionTo(domain.LeaveStatusApproved))
	assert.True(t, domain.LeaveStatusPending.CanTransitionTo(domain.LeaveStatusRejected))
	assert.True(t, domain.LeaveStatusPending.CanTransitionTo(domain.LeaveStatusCancelled))
	assert.False(t, domain.LeaveStatusApproved.CanTransitionTo(domain.LeaveStatusCancelled))
	assert.False(t, domain.LeaveStatusRejected.CanTransitionTo(domain.LeaveStatusApproved))
	assert.False(t, domain.LeaveStatusCancelled.CanTransitionTo(domain.LeaveStatusPending))
}
