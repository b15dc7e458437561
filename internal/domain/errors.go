package domain

import (
	"errors"
	"fmt"
	"time"
)

// 协调器对外暴露的错误，全部同步返回给调用方，不做自动重试
var (
	// ErrShiftConflict 员工在同一天已经存在未取消的班次
	ErrShiftConflict = errors.New("员工当天已有排班")

	// ErrLeaveOverlap 员工已有与该日期区间重叠的已批准请假
	ErrLeaveOverlap = errors.New("请假时间与已批准的请假重叠")

	// ErrInvalidTransition 班次状态机不允许的状态变更
	ErrInvalidTransition = errors.New("不允许的班次状态变更")

	// ErrInvalidState 请假单或换班申请不处于该操作要求的状态
	ErrInvalidState = errors.New("当前状态下不允许该操作")

	// ErrStaffNotFound 引用的员工不存在
	ErrStaffNotFound = errors.New("员工不存在")

	// ErrShiftNotFound 引用的班次不存在
	ErrShiftNotFound = errors.New("班次不存在")

	// ErrInvalidDateRange 结束日期早于开始日期
	ErrInvalidDateRange = errors.New("结束日期不能早于开始日期")
)

// ShiftConflictError 携带冲突上下文，方便调用方渲染提示
type ShiftConflictError struct {
	StaffID         int64
	Date            time.Time
	ConflictShiftID int64
}

func (e *ShiftConflictError) Error() string {
	return fmt.Sprintf("员工 %d 在 %s 已有班次 %d", e.StaffID, e.Date.Format("2006-01-02"), e.ConflictShiftID)
}

func (e *ShiftConflictError) Unwrap() error {
	return ErrShiftConflict
}

type LeaveOverlapError struct {
	StaffID           int64
	ConflictRequestID int64
}

func (e *LeaveOverlapError) Error() string {
	return fmt.Sprintf("员工 %d 的请假与已批准的请假单 %d 重叠", e.StaffID, e.ConflictRequestID)
}

func (e *LeaveOverlapError) Unwrap() error {
	return ErrLeaveOverlap
}

type InvalidTransitionError struct {
	ShiftID int64
	From    ShiftStatus
	To      ShiftStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("班次 %d 不允许从 %s 变更为 %s", e.ShiftID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
