package coordinator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wardline-dev/roster-coordinator/backend/internal/coordinator"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsRange(t *testing.T) {
	cases := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
		want         bool
	}{
		{"完全分离", date(2024, 3, 1), date(2024, 3, 3), date(2024, 3, 5), date(2024, 3, 7), false},
		{"部分重叠", date(2024, 4, 1), date(2024, 4, 5), date(2024, 4, 3), date(2024, 4, 10), true},
		{"边界相接算重叠", date(2024, 3, 1), date(2024, 3, 3), date(2024, 3, 3), date(2024, 3, 5), true},
		{"包含关系", date(2024, 3, 1), date(2024, 3, 31), date(2024, 3, 10), date(2024, 3, 12), true},
		{"单日窗口重叠", date(2024, 3, 3), date(2024, 3, 3), date(2024, 3, 3), date(2024, 3, 3), true},
		{"单日窗口分离", date(2024, 3, 3), date(2024, 3, 3), date(2024, 3, 4), date(2024, 3, 4), false},
		{"顺序无关", date(2024, 4, 3), date(2024, 4, 10), date(2024, 4, 1), date(2024, 4, 5), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, coordinator.OverlapsRange(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
		})
	}
}

// 数据库侧的重叠判断用的是 start_date <= $end AND end_date >= $start，
// 在所有单日与相接边界的组合上确认它和 OverlapsRange 给出同一个答案
func TestOverlapsRangeAgreesWithSQLPredicate(t *testing.T) {
	sqlPredicate := func(aStart, aEnd, bStart, bEnd time.Time) bool {
		return !bStart.After(aEnd) && !bEnd.Before(aStart)
	}

	base := date(2024, 5, 1)
	for aStart := 0; aStart < 4; aStart++ {
		for aEnd := aStart; aEnd < 4; aEnd++ {
			for bStart := 0; bStart < 4; bStart++ {
				for bEnd := bStart; bEnd < 4; bEnd++ {
					a1, a2 := base.AddDate(0, 0, aStart), base.AddDate(0, 0, aEnd)
					b1, b2 := base.AddDate(0, 0, bStart), base.AddDate(0, 0, bEnd)
					assert.Equal(t,
						sqlPredicate(a1, a2, b1, b2),
						coordinator.OverlapsRange(a1, a2, b1, b2),
						"[%d,%d] vs [%d,%d]", aStart, aEnd, bStart, bEnd,
					)
				}
			}
		}
	}
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, int32(3), coordinator.InclusiveDays(date(2024, 3, 1), date(2024, 3, 3)))
	assert.Equal(t, int32(1), coordinator.InclusiveDays(date(2024, 3, 1), date(2024, 3, 1)))
	assert.Equal(t, int32(31), coordinator.InclusiveDays(date(2024, 3, 1), date(2024, 3, 31)))
	// 跨月
	assert.Equal(t, int32(5), coordinator.InclusiveDays(date(2024, 2, 27), date(2024, 3, 2)))
	// 非法区间
	assert.Equal(t, int32(0), coordinator.InclusiveDays(date(2024, 3, 3), date(2024, 3, 1)))
}

func TestShiftsInRange(t *testing.T) {
	shifts := []*domain.Shift{
		{ID: 1, StaffID: 7, Date: date(2024, 3, 1), Status: domain.ShiftStatusScheduled},
		{ID: 2, StaffID: 7, Date: date(2024, 3, 2), Status: domain.ShiftStatusCancelled},
		{ID: 3, StaffID: 7, Date: date(2024, 3, 3), Status: domain.ShiftStatusConfirmed},
		{ID: 4, StaffID: 8, Date: date(2024, 3, 3), Status: domain.ShiftStatusConfirmed},
		{ID: 5, StaffID: 7, Date: date(2024, 3, 10), Status: domain.ShiftStatusConfirmed},
	}

	got := coordinator.ShiftsInRange(shifts, 7, date(2024, 3, 1), date(2024, 3, 5))

	ids := make([]int64, 0, len(got))
	for _, shift := range got {
		ids = append(ids, shift.ID)
	}
	// 已取消的 2 号、他人的 4 号和区间外的 5 号都不包含在内
	assert.Equal(t, []int64{1, 3}, ids)
}
