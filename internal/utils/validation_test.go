package utils_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
	"github.com/wardline-dev/roster-coordinator/backend/internal/utils"
)

func TestValidateShiftTimes(t *testing.T) {
	assert.NoError(t, utils.ValidateShiftTimes("08:00:00", "16:00:00"))
	// 夜班跨天
	assert.NoError(t, utils.ValidateShiftTimes("22:00:00", "06:00:00"))
	assert.Error(t, utils.ValidateShiftTimes("8:00", "16:00:00"))
	assert.Error(t, utils.ValidateShiftTimes("08:00:00", "25:00:00"))
}

func TestValidateLeaveDateRange(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, utils.ValidateLeaveDateRange(start, start.AddDate(0, 0, 2)))
	// 单日请假
	assert.NoError(t, utils.ValidateLeaveDateRange(start, start))

	err := utils.ValidateLeaveDateRange(start, start.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestValidateScheduleTemplateShifts(t *testing.T) {
	template := &domain.ScheduleTemplate{
		Shifts: []domain.ScheduleTemplateShift{
			{DayOfWeek: 1, ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 2},
			{DayOfWeek: 1, ShiftType: domain.ShiftTypeNight, StartTime: "22:00:00", EndTime: "06:00:00", RequiredStaffCount: 1},
			{DayOfWeek: 2, ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 2},
		},
	}
	assert.NoError(t, utils.ValidateScheduleTemplateShifts(template))

	// 同一天重复的班次类型
	template.Shifts = append(template.Shifts, domain.ScheduleTemplateShift{
		DayOfWeek: 1, ShiftType: domain.ShiftTypeMorning, StartTime: "09:00:00", EndTime: "17:00:00", RequiredStaffCount: 1,
	})
	assert.Error(t, utils.ValidateScheduleTemplateShifts(template))
}

func TestValidateScheduleTemplateShiftsRejectsBadDayOfWeek(t *testing.T) {
	for _, day := range []int32{0, 8, -1} {
		template := &domain.ScheduleTemplate{
			Shifts: []domain.ScheduleTemplateShift{
				{DayOfWeek: day, ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 1},
			},
		}
		assert.Error(t, utils.ValidateScheduleTemplateShifts(template))
	}
}

func TestGenerateRequestCode(t *testing.T) {
	now := time.Date(2024, 3, 1, 8, 30, 15, 0, time.UTC)

	code := utils.GenerateRequestCode(utils.LeaveRequestCodePrefix, now)
	require.Len(t, code, 17)
	assert.True(t, strings.HasPrefix(code, "LV240301083015"))

	code = utils.GenerateRequestCode(utils.ShiftTransferCodePrefix, now)
	assert.True(t, strings.HasPrefix(code, "TR240301083015"))
}
