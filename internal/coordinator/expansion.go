package coordinator

import (
	"fmt"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

// WeekAssignment 模板套用时的一条排班请求：某员工在某天上某类班
type WeekAssignment struct {
	StaffID   int64
	DayOfWeek int32 // 1~7，周一为 1
	ShiftType domain.ShiftType
}

// PlanWeekShifts 把周模板展开成一周的具体班次
// weekStart 是目标周的第一天（周一）
// 对每条请求：
//  1. 在模板中找不到 (dayOfWeek, shiftType) 对应的班次定义时跳过
//  2. 具体日期为 weekStart + (dayOfWeek - 1) 天
//  3. 该员工当天已有未取消班次时静默跳过，不报错
//
// 冲突不会出现在返回值里，调用方需要自行对比请求和结果来发现被跳过的项
func PlanWeekShifts(template *domain.ScheduleTemplate, weekStart time.Time, assignments []WeekAssignment, existing []*domain.Shift, createdBy int64) []*domain.Shift {
	weekStart = DateOf(weekStart)

	planned := make([]*domain.Shift, 0, len(assignments))
	for _, assignment := range assignments {
		templateShift := template.FindShift(assignment.DayOfWeek, assignment.ShiftType)
		if templateShift == nil {
			continue
		}

		date := weekStart.AddDate(0, 0, int(assignment.DayOfWeek)-1)

		if hasActiveShiftOn(existing, assignment.StaffID, date) || hasPlannedShiftOn(planned, assignment.StaffID, date) {
			continue
		}

		planned = append(planned, &domain.Shift{
			StaffID:    assignment.StaffID,
			Date:       date,
			ShiftType:  assignment.ShiftType,
			StartTime:  templateShift.StartTime,
			EndTime:    templateShift.EndTime,
			Department: template.Department,
			WorkType:   domain.WorkTypeRegular,
			Status:     domain.ShiftStatusScheduled,
			Notes:      fmt.Sprintf("由模板「%s」生成", template.Name),
			CreatedBy:  createdBy,
		})
	}

	return planned
}

func hasActiveShiftOn(shifts []*domain.Shift, staffID int64, date time.Time) bool {
	for _, shift := range shifts {
		if shift.StaffID == staffID && shift.Status.IsActive() && DateOf(shift.Date).Equal(date) {
			return true
		}
	}
	return false
}

// 同一次展开请求内部也可能出现对同一员工同一天的重复请求，同样静默跳过
func hasPlannedShiftOn(planned []*domain.Shift, staffID int64, date time.Time) bool {
	for _, shift := range planned {
		if shift.StaffID == staffID && shift.Date.Equal(date) {
			return true
		}
	}
	return false
}
