package domain

import "time"

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusRejected  TransferStatus = "rejected"
	TransferStatusCancelled TransferStatus = "cancelled"
	TransferStatusCompleted TransferStatus = "completed"
)

// 换班申请状态机
// pending 可以走向 approved、rejected 或 cancelled
// approved 只能归档为 completed
// rejected/cancelled/completed 是终态
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusPending:   {TransferStatusApproved, TransferStatusRejected, TransferStatusCancelled},
	TransferStatusApproved:  {TransferStatusCompleted},
	TransferStatusRejected:  {},
	TransferStatusCancelled: {},
	TransferStatusCompleted: {},
}

func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ShiftTransfer 换班申请
// 申请创建时原班次被置为 transferred，在被拒绝或取消时回到 confirmed
// CompensationRequired（补班标记）只做记录，补偿班次的生成留作扩展点
type ShiftTransfer struct {
	ID                   int64          `json:"id"`
	FromStaffID          int64          `json:"fromStaffID"`
	ToStaffID            int64          `json:"toStaffID"`
	OriginalShiftID      int64          `json:"originalShiftID"`
	TransferDate         time.Time      `json:"transferDate"`
	Reason               string         `json:"reason"`
	CompensationRequired bool           `json:"compensationRequired"`
	Notes                string         `json:"notes"`
	TransferCode         string         `json:"transferCode"`
	Status               TransferStatus `json:"status"`
	ApprovedBy           *int64         `json:"approvedBy"`
	ApprovalDate         *time.Time     `json:"approvalDate"`
	ApprovalNotes        string         `json:"approvalNotes"`
	NewShiftID           *int64         `json:"newShiftID"` // 审批通过时为接班人创建的班次
	RequestDate          time.Time      `json:"requestDate"`
	Version              int32          `json:"-"`
}
