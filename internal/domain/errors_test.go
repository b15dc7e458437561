package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

// 处理层通过 errors.Is 匹配哨兵错误来渲染提示，这里确认展开链
func TestStructuredErrorsUnwrap(t *testing.T) {
	conflict := &domain.ShiftConflictError{StaffID: 7, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ConflictShiftID: 42}
	assert.True(t, errors.Is(conflict, domain.ErrShiftConflict))
	assert.Contains(t, conflict.Error(), "2024-03-01")

	overlap := &domain.LeaveOverlapError{StaffID: 7, ConflictRequestID: 9}
	assert.True(t, errors.Is(overlap, domain.ErrLeaveOverlap))

	transition := &domain.InvalidTransitionError{ShiftID: 1, From: domain.ShiftStatusCompleted, To: domain.ShiftStatusCancelled}
	assert.True(t, errors.Is(transition, domain.ErrInvalidTransition))
}
