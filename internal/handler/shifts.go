package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
	"github.com/wardline-dev/roster-coordinator/backend/internal/utils"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	var req struct {
		StaffID    int64   `json:"staffID" validate:"required"`
		Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
		ShiftType  string  `json:"shiftType" validate:"required,oneof=早班 午班 夜班 全天班 待命班"`
		StartTime  string  `json:"startTime" validate:"required"`
		EndTime    string  `json:"endTime" validate:"required"`
		Department string  `json:"department" validate:"required"`
		Ward       *string `json:"ward"`
		WorkType   string  `json:"workType" validate:"required,oneof=常规 加班 节假日 紧急"`
		Notes      string  `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateShiftTimes(req.StartTime, req.EndTime); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 排班对象必须是在职员工
	staff, err := h.repository.GetStaffByID(req.StaffID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if !staff.IsActive {
		h.errorResponse(w, r, "员工已离职，无法排班")
		return
	}

	shift := &domain.Shift{
		StaffID:    req.StaffID,
		Date:       date,
		ShiftType:  domain.ShiftType(req.ShiftType),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Department: req.Department,
		Ward:       req.Ward,
		WorkType:   domain.WorkType(req.WorkType),
		Status:     domain.ShiftStatusScheduled,
		Notes:      req.Notes,
		CreatedBy:  myInfo.ID,
	}

	if err := h.repository.CreateShift(shift); err != nil {
		var conflictErr *domain.ShiftConflictError
		switch {
		case errors.As(err, &conflictErr):
			h.errorResponse(w, r, "该员工当天已有未取消的班次")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建班次成功", shift)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	h.successResponse(w, r, "获取班次成功", shift)
}

func (h *Handler) GetMyShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")

	if startParam == "" && endParam == "" {
		shifts, err := h.repository.GetShiftsByStaffID(myInfo.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.successResponse(w, r, "获取个人班次成功", shifts)
		return
	}

	start, err := time.Parse("2006-01-02", startParam)
	if err != nil {
		h.errorResponse(w, r, "起始日期格式无效")
		return
	}
	end, err := time.Parse("2006-01-02", endParam)
	if err != nil {
		h.errorResponse(w, r, "结束日期格式无效")
		return
	}

	shifts, err := h.repository.GetShiftsInRange(myInfo.ID, start, end)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取个人班次成功", shifts)
}

// ConfirmShift 员工确认自己的班次
func (h *Handler) ConfirmShift(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if shift.StaffID != myInfo.ID {
		h.errorResponse(w, r, "只能确认自己的班次")
		return
	}

	now := time.Now()
	shift.ConfirmedBy = &myInfo.ID
	shift.ConfirmedAt = &now

	if err := h.repository.UpdateShiftStatus(shift, domain.ShiftStatusConfirmed); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			h.errorResponse(w, r, "当前状态的班次无法确认")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次已被他人修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "确认班次成功", shift)
}

func (h *Handler) CompleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if err := h.repository.UpdateShiftStatus(shift, domain.ShiftStatusCompleted); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			h.errorResponse(w, r, "当前状态的班次无法标记为已完成")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次已被他人修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "班次已完成", shift)
}

func (h *Handler) CancelShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	var req struct {
		Notes string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Notes != "" {
		if shift.Notes != "" {
			shift.Notes += "\n"
		}
		shift.Notes += req.Notes
	}

	if err := h.repository.UpdateShiftStatus(shift, domain.ShiftStatusCancelled); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			h.errorResponse(w, r, "当前状态的班次无法取消")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次已被他人修改，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "取消班次成功", shift)
}
