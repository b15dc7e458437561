package domain

import "time"

type ShiftType string

const (
	ShiftTypeMorning   ShiftType = "早班"
	ShiftTypeAfternoon ShiftType = "午班"
	ShiftTypeNight     ShiftType = "夜班"
	ShiftTypeFullDay   ShiftType = "全天班"
	ShiftTypeOnCall    ShiftType = "待命班"
)

type WorkType string

const (
	WorkTypeRegular   WorkType = "常规"
	WorkTypeOvertime  WorkType = "加班"
	WorkTypeHoliday   WorkType = "节假日"
	WorkTypeEmergency WorkType = "紧急"
)

type ShiftStatus string

const (
	ShiftStatusScheduled   ShiftStatus = "scheduled"
	ShiftStatusConfirmed   ShiftStatus = "confirmed"
	ShiftStatusCompleted   ShiftStatus = "completed"
	ShiftStatusCancelled   ShiftStatus = "cancelled"
	ShiftStatusTransferred ShiftStatus = "transferred"
)

// 班次状态机
// scheduled/confirmed 可以走向 completed、cancelled 或 transferred
// transferred 只能在换班被拒绝或取消时回到 confirmed
// completed 是终态，不允许任何后续变更
var shiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftStatusScheduled:   {ShiftStatusConfirmed, ShiftStatusCompleted, ShiftStatusCancelled, ShiftStatusTransferred},
	ShiftStatusConfirmed:   {ShiftStatusCompleted, ShiftStatusCancelled, ShiftStatusTransferred},
	ShiftStatusTransferred: {ShiftStatusConfirmed},
	ShiftStatusCompleted:   {},
	ShiftStatusCancelled:   {},
}

func (s ShiftStatus) CanTransitionTo(target ShiftStatus) bool {
	for _, allowed := range shiftTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsActive 表示该班次是否占用员工当天的排班名额
func (s ShiftStatus) IsActive() bool {
	return s != ShiftStatusCancelled
}

type Shift struct {
	ID          int64       `json:"id"`
	StaffID     int64       `json:"staffID"`
	Date        time.Time   `json:"date"` // 只取日期部分，时间部分恒为零值
	ShiftType   ShiftType   `json:"shiftType"`
	StartTime   string      `json:"startTime"` // HH:MM:SS
	EndTime     string      `json:"endTime"`   // HH:MM:SS
	Department  string      `json:"department"`
	Ward        *string     `json:"ward"`
	WorkType    WorkType    `json:"workType"`
	Status      ShiftStatus `json:"status"`
	ConfirmedBy *int64      `json:"confirmedBy"`
	ConfirmedAt *time.Time  `json:"confirmedAt"`
	Notes       string      `json:"notes"`
	CreatedBy   int64       `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	Version     int32       `json:"-"`
}
