package coordinator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline-dev/roster-coordinator/backend/internal/coordinator"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func newWeekTemplate() *domain.ScheduleTemplate {
	return &domain.ScheduleTemplate{
		ID:         1,
		Name:       "内科常规周班",
		Department: "内科",
		IsActive:   true,
		Shifts: []domain.ScheduleTemplateShift{
			{ID: 1, DayOfWeek: 1, ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 2},
			{ID: 2, DayOfWeek: 1, ShiftType: domain.ShiftTypeNight, StartTime: "22:00:00", EndTime: "06:00:00", RequiredStaffCount: 1},
			{ID: 3, DayOfWeek: 3, ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 2},
			{ID: 4, DayOfWeek: 7, ShiftType: domain.ShiftTypeFullDay, StartTime: "08:00:00", EndTime: "20:00:00", RequiredStaffCount: 1},
		},
	}
}

func TestPlanWeekShifts(t *testing.T) {
	template := newWeekTemplate()
	weekStart := date(2024, 6, 3) // 周一

	assignments := []coordinator.WeekAssignment{
		{StaffID: 7, DayOfWeek: 1, ShiftType: domain.ShiftTypeMorning},
		{StaffID: 8, DayOfWeek: 1, ShiftType: domain.ShiftTypeNight},
		{StaffID: 7, DayOfWeek: 3, ShiftType: domain.ShiftTypeMorning},
		{StaffID: 9, DayOfWeek: 7, ShiftType: domain.ShiftTypeFullDay},
	}

	planned := coordinator.PlanWeekShifts(template, weekStart, assignments, nil, 3)
	require.Len(t, planned, 4)

	// 日期 = weekStart + (dayOfWeek - 1) 天
	assert.Equal(t, date(2024, 6, 3), planned[0].Date)
	assert.Equal(t, date(2024, 6, 3), planned[1].Date)
	assert.Equal(t, date(2024, 6, 5), planned[2].Date)
	assert.Equal(t, date(2024, 6, 9), planned[3].Date)

	for _, shift := range planned {
		assert.Equal(t, domain.ShiftStatusScheduled, shift.Status)
		assert.Equal(t, domain.WorkTypeRegular, shift.WorkType)
		assert.Equal(t, "内科", shift.Department)
		assert.Contains(t, shift.Notes, template.Name)
	}
}

func TestPlanWeekShiftsSkipsMissingPatternEntry(t *testing.T) {
	template := newWeekTemplate()

	assignments := []coordinator.WeekAssignment{
		{StaffID: 7, DayOfWeek: 2, ShiftType: domain.ShiftTypeMorning}, // 模板中周二没有早班
		{StaffID: 7, DayOfWeek: 1, ShiftType: domain.ShiftTypeOnCall},  // 模板中周一没有待命班
		{StaffID: 7, DayOfWeek: 1, ShiftType: domain.ShiftTypeMorning},
	}

	planned := coordinator.PlanWeekShifts(template, date(2024, 6, 3), assignments, nil, 3)
	require.Len(t, planned, 1)
	assert.Equal(t, domain.ShiftTypeMorning, planned[0].ShiftType)
}

func TestPlanWeekShiftsSilentlySkipsConflicts(t *testing.T) {
	template := newWeekTemplate()
	weekStart := date(2024, 6, 3)

	// 10 条请求中 3 人当天已有未取消班次，应该生成 7 条
	assignments := make([]coordinator.WeekAssignment, 0, 10)
	for staffID := int64(1); staffID <= 10; staffID++ {
		assignments = append(assignments, coordinator.WeekAssignment{
			StaffID:   staffID,
			DayOfWeek: 1,
			ShiftType: domain.ShiftTypeMorning,
		})
	}

	existing := []*domain.Shift{
		{ID: 101, StaffID: 2, Date: date(2024, 6, 3), Status: domain.ShiftStatusConfirmed},
		{ID: 102, StaffID: 5, Date: date(2024, 6, 3), Status: domain.ShiftStatusScheduled},
		{ID: 103, StaffID: 8, Date: date(2024, 6, 3), Status: domain.ShiftStatusTransferred},
		// 已取消的班次不算冲突
		{ID: 104, StaffID: 9, Date: date(2024, 6, 3), Status: domain.ShiftStatusCancelled},
	}

	planned := coordinator.PlanWeekShifts(template, weekStart, assignments, existing, 3)
	require.Len(t, planned, 7)

	for _, shift := range planned {
		assert.NotContains(t, []int64{2, 5, 8}, shift.StaffID)
	}
}

func TestPlanWeekShiftsSkipsDuplicateAssignments(t *testing.T) {
	template := newWeekTemplate()

	assignments := []coordinator.WeekAssignment{
		{StaffID: 7, DayOfWeek: 1, ShiftType: domain.ShiftTypeMorning},
		{StaffID: 7, DayOfWeek: 1, ShiftType: domain.ShiftTypeNight}, // 同一员工同一天的第二条请求
	}

	planned := coordinator.PlanWeekShifts(template, date(2024, 6, 3), assignments, nil, 3)
	require.Len(t, planned, 1)
	assert.Equal(t, domain.ShiftTypeMorning, planned[0].ShiftType)
}
