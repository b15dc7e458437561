package coordinator

import (
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

// DateOf 把时间截断成日历日（UTC 零点），班次与请假的日期比较都基于日历日
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OverlapsRange 判断两个闭区间 [aStart, aEnd] 和 [bStart, bEnd] 是否重叠
// 边界相接（共享同一天）也算重叠，start == end 的区间是合法的单日窗口
func OverlapsRange(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd = DateOf(aStart), DateOf(aEnd)
	bStart, bEnd = DateOf(bStart), DateOf(bEnd)
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// InclusiveDays 计算闭区间 [start, end] 的天数，即 totalDays
// start == end 算 1 天；end 早于 start 时返回 0
func InclusiveDays(start, end time.Time) int32 {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return 0
	}
	return int32(end.Sub(start).Hours()/24) + 1
}

// ShiftsInRange 过滤出指定员工在 [start, end]（闭区间）内的所有未取消班次
func ShiftsInRange(shifts []*domain.Shift, staffID int64, start, end time.Time) []*domain.Shift {
	start, end = DateOf(start), DateOf(end)

	result := make([]*domain.Shift, 0)
	for _, shift := range shifts {
		if shift.StaffID != staffID || !shift.Status.IsActive() {
			continue
		}
		date := DateOf(shift.Date)
		if date.Before(start) || date.After(end) {
			continue
		}
		result = append(result, shift)
	}

	return result
}
