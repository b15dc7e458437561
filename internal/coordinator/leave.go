package coordinator

import (
	"fmt"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

// CancelNote 请假批准时写到被取消班次备注上的说明
func CancelNote(lr *domain.LeaveRequest) string {
	return fmt.Sprintf("因请假取消（%s）：%s", lr.RequestCode, lr.Reason)
}

// PlanLeaveReplacements 为请假批准生成顶班班次
// 对每一个受影响的班次，克隆日期、班次类型、起止时刻、科室、病区和工作类型，
// 为顶班员工生成一个状态为 confirmed 的新班次
// 受影响班次中已取消的不再生成顶班
func PlanLeaveReplacements(lr *domain.LeaveRequest, affected []*domain.Shift, approvedBy int64, now time.Time) []*domain.Shift {
	if lr.ReplacementStaffID == nil {
		return nil
	}

	replacements := make([]*domain.Shift, 0, len(affected))
	for _, shift := range affected {
		if !shift.Status.IsActive() {
			continue
		}
		confirmedAt := now
		replacements = append(replacements, &domain.Shift{
			StaffID:     *lr.ReplacementStaffID,
			Date:        DateOf(shift.Date),
			ShiftType:   shift.ShiftType,
			StartTime:   shift.StartTime,
			EndTime:     shift.EndTime,
			Department:  shift.Department,
			Ward:        shift.Ward,
			WorkType:    shift.WorkType,
			Status:      domain.ShiftStatusConfirmed,
			ConfirmedBy: &approvedBy,
			ConfirmedAt: &confirmedAt,
			Notes:       fmt.Sprintf("顶班（请假单 %s）", lr.RequestCode),
			CreatedBy:   approvedBy,
		})
	}

	return replacements
}
