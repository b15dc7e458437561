package coordinator

import (
	"fmt"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

// PlanTransferShift 为换班批准生成接班班次
// 克隆原班次的日期、班次类型、起止时刻、科室、病区和工作类型，
// 新班次直接处于 confirmed 状态并盖上审批人的确认章
func PlanTransferShift(transfer *domain.ShiftTransfer, original *domain.Shift, approvedBy int64, now time.Time) *domain.Shift {
	confirmedAt := now
	return &domain.Shift{
		StaffID:     transfer.ToStaffID,
		Date:        DateOf(original.Date),
		ShiftType:   original.ShiftType,
		StartTime:   original.StartTime,
		EndTime:     original.EndTime,
		Department:  original.Department,
		Ward:        original.Ward,
		WorkType:    original.WorkType,
		Status:      domain.ShiftStatusConfirmed,
		ConfirmedBy: &approvedBy,
		ConfirmedAt: &confirmedAt,
		Notes:       fmt.Sprintf("接班（换班单 %s）", transfer.TransferCode),
		CreatedBy:   approvedBy,
	}
}

// CanCreateTransfer 检查原班次是否允许发起换班
// 只有 scheduled 或 confirmed 状态的班次可以被换出
func CanCreateTransfer(original *domain.Shift) bool {
	return original.Status == domain.ShiftStatusScheduled || original.Status == domain.ShiftStatusConfirmed
}
