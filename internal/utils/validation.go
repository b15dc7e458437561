package utils

import (
	"fmt"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

const timeOfDayLayout = "15:04:05"

// ValidateTimeOfDay 检查 HH:MM:SS 格式的时刻字符串
func ValidateTimeOfDay(value string) error {
	if _, err := time.Parse(timeOfDayLayout, value); err != nil {
		return fmt.Errorf("时刻 %q 格式错误，应为 HH:MM:SS", value)
	}
	return nil
}

// ValidateShiftTimes 检查班次的起止时刻
// 夜班允许跨天（结束时刻小于开始时刻），所以只检查格式
func ValidateShiftTimes(startTime, endTime string) error {
	if err := ValidateTimeOfDay(startTime); err != nil {
		return err
	}
	if err := ValidateTimeOfDay(endTime); err != nil {
		return err
	}
	return nil
}

// ValidateLeaveDateRange 检查请假区间是否合法
// start == end 是合法的单日请假
func ValidateLeaveDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

// ValidateScheduleTemplateShifts 检查模板中每个班次定义
// 同一天内不允许出现重复的班次类型，班次的时刻必须格式正确
func ValidateScheduleTemplateShifts(template *domain.ScheduleTemplate) error {
	seen := make(map[int32]map[domain.ShiftType]bool)

	for i, shift := range template.Shifts {
		if shift.DayOfWeek < 1 || shift.DayOfWeek > 7 {
			return fmt.Errorf("第 %d 个班次的星期 %d 不合法，应为 1~7", i+1, shift.DayOfWeek)
		}

		if err := ValidateShiftTimes(shift.StartTime, shift.EndTime); err != nil {
			return fmt.Errorf("第 %d 个班次：%w", i+1, err)
		}

		if shift.RequiredStaffCount < 1 {
			return fmt.Errorf("第 %d 个班次要求的人数不能小于 1", i+1)
		}

		if _, exists := seen[shift.DayOfWeek]; !exists {
			seen[shift.DayOfWeek] = make(map[domain.ShiftType]bool)
		}
		if seen[shift.DayOfWeek][shift.ShiftType] {
			return fmt.Errorf("星期 %d 出现了重复的班次类型 %s", shift.DayOfWeek, shift.ShiftType)
		}
		seen[shift.DayOfWeek][shift.ShiftType] = true
	}

	return nil
}

// ValidateTemplateValidity 检查模板的生效区间
func ValidateTemplateValidity(validFrom time.Time, validTo *time.Time) error {
	if validTo != nil && validTo.Before(validFrom) {
		return fmt.Errorf("失效日期不能早于生效日期")
	}
	return nil
}
