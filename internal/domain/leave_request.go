package domain

import "time"

type LeaveType string

const (
	LeaveTypeSick        LeaveType = "病假"
	LeaveTypeVacation    LeaveType = "休假"
	LeaveTypePersonal    LeaveType = "事假"
	LeaveTypeEmergency   LeaveType = "急假"
	LeaveTypeMaternity   LeaveType = "产假"
	LeaveTypeBereavement LeaveType = "丧假"
	LeaveTypeAnnual      LeaveType = "年假"
	LeaveTypeUnpaid      LeaveType = "无薪假"
)

type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// IsTerminal approved/rejected/cancelled 之后请假单不允许再变更
func (s LeaveStatus) IsTerminal() bool {
	return s != LeaveStatusPending
}

// 请假单状态机，只有 pending 可以走向三个终态
var leaveTransitions = map[LeaveStatus][]LeaveStatus{
	LeaveStatusPending:   {LeaveStatusApproved, LeaveStatusRejected, LeaveStatusCancelled},
	LeaveStatusApproved:  {},
	LeaveStatusRejected:  {},
	LeaveStatusCancelled: {},
}

func (s LeaveStatus) CanTransitionTo(target LeaveStatus) bool {
	for _, allowed := range leaveTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type LeaveRequest struct {
	ID                 int64       `json:"id"`
	StaffID            int64       `json:"staffID"`
	LeaveType          LeaveType   `json:"leaveType"`
	StartDate          time.Time   `json:"startDate"` // 闭区间
	EndDate            time.Time   `json:"endDate"`   // 闭区间
	StartTime          *string     `json:"startTime"` // 非全天请假时的起始时刻
	EndTime            *string     `json:"endTime"`
	IsFullDay          bool        `json:"isFullDay"`
	Reason             string      `json:"reason"`
	ReplacementStaffID *int64      `json:"replacementStaffID"`
	EmergencyContact   *string     `json:"emergencyContact"`
	Notes              string      `json:"notes"`
	RequestCode        string      `json:"requestCode"`
	TotalDays          int32       `json:"totalDays"`
	Status             LeaveStatus `json:"status"`
	ApprovedBy         *int64      `json:"approvedBy"`
	ApprovalDate       *time.Time  `json:"approvalDate"`
	ApprovalNotes      string      `json:"approvalNotes"`
	AffectedShiftIDs   []int64     `json:"affectedShiftIDs"` // 创建/编辑时快照的受影响班次
	RequestDate        time.Time   `json:"requestDate"`
	Version            int32       `json:"-"`
}
