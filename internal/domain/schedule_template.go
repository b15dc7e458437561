package domain

import (
	"time"
)

// ScheduleTemplateShift 周模板中某一天的一个班次定义
// DayOfWeek 取 1~7，周一为 1
type ScheduleTemplateShift struct {
	ID                 int64     `json:"id"`
	DayOfWeek          int32     `json:"dayOfWeek"`
	ShiftType          ShiftType `json:"shiftType"`
	StartTime          string    `json:"startTime"`
	EndTime            string    `json:"endTime"`
	RequiredStaffCount int32     `json:"requiredStaffCount"`
	RequiredRoles      []string  `json:"requiredRoles"`
}

type ScheduleTemplate struct {
	ID         int64                   `json:"id"`
	Name       string                  `json:"name"`
	Department string                  `json:"department"`
	Shifts     []ScheduleTemplateShift `json:"shifts"`
	ValidFrom  time.Time               `json:"validFrom"`
	ValidTo    *time.Time              `json:"validTo"`
	IsActive   bool                    `json:"isActive"`
	CreatedAt  time.Time               `json:"createdAt"`
	Version    int32                   `json:"-"`
}

// FindShift 按 (dayOfWeek, shiftType) 查找模板中对应的班次定义，找不到时返回 nil
func (st *ScheduleTemplate) FindShift(dayOfWeek int32, shiftType ShiftType) *ScheduleTemplateShift {
	for i := range st.Shifts {
		if st.Shifts[i].DayOfWeek == dayOfWeek && st.Shifts[i].ShiftType == shiftType {
			return &st.Shifts[i]
		}
	}
	return nil
}
