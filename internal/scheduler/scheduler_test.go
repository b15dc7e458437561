package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func newTestStaffs() []*domain.Staff {
	return []*domain.Staff{
		{ID: 1, FullName: "张三", Role: domain.RoleStaff, Department: "内科", IsActive: true},
		{ID: 2, FullName: "李四", Role: domain.RoleStaff, Department: "内科", IsActive: true},
		{ID: 3, FullName: "王五", Role: domain.RoleSupervisor, Department: "内科", IsActive: true},
		{ID: 4, FullName: "赵六", Role: domain.RoleStaff, Department: "内科", IsActive: false},
	}
}

func newTestTemplate() *domain.ScheduleTemplate {
	return &domain.ScheduleTemplate{
		ID:         1,
		Name:       "内科标准周模板",
		Department: "内科",
		ValidFrom:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
		Shifts: []domain.ScheduleTemplateShift{
			{DayOfWeek: 1, ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 2},
			{DayOfWeek: 1, ShiftType: domain.ShiftTypeNight, StartTime: "00:00:00", EndTime: "08:00:00", RequiredStaffCount: 1, RequiredRoles: []string{string(domain.RoleSupervisor)}},
			{DayOfWeek: 2, ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 2},
		},
	}
}

func newTestParameters() *Parameters {
	return &Parameters{
		PopulationSize: 20,
		MaxGenerations: 30,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		EliteCount:     2,
		FairnessWeight: 0.5,
	}
}

func TestNew(t *testing.T) {
	t.Run("过滤离职员工", func(t *testing.T) {
		s, err := New(newTestParameters(), newTestStaffs(), newTestTemplate())
		require.NoError(t, err)
		assert.Len(t, s.staffs, 3)
	})

	t.Run("没有在职员工时报错", func(t *testing.T) {
		staffs := []*domain.Staff{{ID: 1, IsActive: false}}
		_, err := New(newTestParameters(), staffs, newTestTemplate())
		assert.Error(t, err)
	})

	t.Run("模板没有班次定义时报错", func(t *testing.T) {
		template := newTestTemplate()
		template.Shifts = nil
		_, err := New(newTestParameters(), newTestStaffs(), template)
		assert.Error(t, err)
	})

	t.Run("精英数量超过种群规模时报错", func(t *testing.T) {
		parameters := newTestParameters()
		parameters.EliteCount = parameters.PopulationSize + 1
		_, err := New(parameters, newTestStaffs(), newTestTemplate())
		assert.Error(t, err)
	})

	t.Run("不保留精英也是合法参数", func(t *testing.T) {
		parameters := newTestParameters()
		parameters.EliteCount = 0
		s, err := New(parameters, newTestStaffs(), newTestTemplate())
		require.NoError(t, err)

		_, err = s.Schedule()
		assert.NoError(t, err)
	})
}

func TestSchedule(t *testing.T) {
	s, err := New(newTestParameters(), newTestStaffs(), newTestTemplate())
	require.NoError(t, err)

	assignments, err := s.Schedule()
	require.NoError(t, err)
	require.NotEmpty(t, assignments)

	validIDs := map[int64]struct{}{1: {}, 2: {}, 3: {}}

	t.Run("一人一天最多一个班次", func(t *testing.T) {
		seen := make(map[int32]map[int64]struct{})
		for _, a := range assignments {
			if _, exists := seen[a.DayOfWeek]; !exists {
				seen[a.DayOfWeek] = make(map[int64]struct{})
			}
			_, duplicated := seen[a.DayOfWeek][a.StaffID]
			assert.False(t, duplicated, "员工 %d 在第 %d 天被指派了多个班次", a.StaffID, a.DayOfWeek)
			seen[a.DayOfWeek][a.StaffID] = struct{}{}
		}
	})

	t.Run("只指派在职员工", func(t *testing.T) {
		for _, a := range assignments {
			_, ok := validIDs[a.StaffID]
			assert.True(t, ok, "员工 %d 不在候选之中", a.StaffID)
		}
	})

	t.Run("尊重槽位的角色要求", func(t *testing.T) {
		for _, a := range assignments {
			if a.DayOfWeek == 1 && a.ShiftType == domain.ShiftTypeNight {
				assert.Equal(t, int64(3), a.StaffID, "夜班槽位要求科室主管")
			}
		}
	})
}

func TestShiftHours(t *testing.T) {
	assert.InDelta(t, 8.0, shiftHours("08:00:00", "16:00:00"), 0.001)

	// 夜班跨零点
	assert.InDelta(t, 8.0, shiftHours("16:00:00", "00:00:00"), 0.001)
}
