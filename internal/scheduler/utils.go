package scheduler

import (
	"slices"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func matchesRequiredRoles(staff *domain.Staff, requiredRoles []string) bool {
	if len(requiredRoles) == 0 {
		return true
	}
	return slices.Contains(requiredRoles, string(staff.Role))
}

// shiftHours 计算班次时长，夜班跨零点时按次日结束计算
func shiftHours(startTime, endTime string) float64 {
	start, _ := time.Parse("15:04:05", startTime)
	end, _ := time.Parse("15:04:05", endTime)

	hours := end.Sub(start).Hours()
	if hours <= 0 {
		hours += 24
	}
	return hours
}
