package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wardline-dev/roster-coordinator/backend/internal/coordinator"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
	"github.com/wardline-dev/roster-coordinator/backend/internal/utils"
)

func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	var req struct {
		LeaveType          string  `json:"leaveType" validate:"required,oneof=病假 休假 事假 急假 产假 丧假 年假 无薪假"`
		StartDate          string  `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate            string  `json:"endDate" validate:"required,datetime=2006-01-02"`
		StartTime          *string `json:"startTime"`
		EndTime            *string `json:"endTime"`
		IsFullDay          bool    `json:"isFullDay"`
		Reason             string  `json:"reason" validate:"required"`
		ReplacementStaffID *int64  `json:"replacementStaffID"`
		EmergencyContact   *string `json:"emergencyContact"`
		Notes              string  `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateLeaveDateRange(startDate, endDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 非全天请假必须指定起止时刻
	if !req.IsFullDay {
		if req.StartTime == nil || req.EndTime == nil {
			h.errorResponse(w, r, "非全天请假必须指定起止时刻")
			return
		}
		if err := utils.ValidateTimeOfDay(*req.StartTime); err != nil {
			h.badRequest(w, r, err)
			return
		}
		if err := utils.ValidateTimeOfDay(*req.EndTime); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}

	// 与已批准的请假重叠时直接拒绝创建
	_, overlapped, err := h.repository.HasApprovedLeaveOverlap(myInfo.ID, startDate, endDate, nil)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if overlapped {
		h.errorResponse(w, r, "请假时间与已批准的请假重叠")
		return
	}

	if req.ReplacementStaffID != nil {
		replacement, err := h.repository.GetStaffByID(*req.ReplacementStaffID)
		if err != nil {
			h.errorResponse(w, r, "顶班员工不存在")
			return
		}
		if !replacement.IsActive {
			h.errorResponse(w, r, "顶班员工已离职")
			return
		}
	}

	// 创建时快照受影响的班次，审批时只处理快照中的班次
	affected, err := h.repository.GetShiftsInRange(myInfo.ID, startDate, endDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	affectedIDs := make([]int64, 0, len(affected))
	for _, shift := range affected {
		affectedIDs = append(affectedIDs, shift.ID)
	}

	lr := &domain.LeaveRequest{
		StaffID:            myInfo.ID,
		LeaveType:          domain.LeaveType(req.LeaveType),
		StartDate:          startDate,
		EndDate:            endDate,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		IsFullDay:          req.IsFullDay,
		Reason:             req.Reason,
		ReplacementStaffID: req.ReplacementStaffID,
		EmergencyContact:   req.EmergencyContact,
		Notes:              req.Notes,
		RequestCode:        utils.GenerateRequestCode(utils.LeaveRequestCodePrefix, time.Now()),
		TotalDays:          coordinator.InclusiveDays(startDate, endDate),
		Status:             domain.LeaveStatusPending,
		AffectedShiftIDs:   affectedIDs,
	}

	// 单号撞号时重新生成再试
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		createErr = h.repository.CreateLeaveRequest(lr)

		var pgErr *pgconn.PgError
		if errors.As(createErr, &pgErr) && pgErr.ConstraintName == "leave_requests_request_code_key" {
			lr.RequestCode = utils.GenerateRequestCode(utils.LeaveRequestCodePrefix, time.Now())
			continue
		}
		break
	}
	if createErr != nil {
		h.internalServerError(w, r, createErr)
		return
	}

	h.successResponse(w, r, "提交请假申请成功", lr)
}

func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)
	h.successResponse(w, r, "获取请假单成功", lr)
}

func (h *Handler) GetMyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	lrs, err := h.repository.GetLeaveRequestsByStaffID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取个人请假记录成功", lrs)
}

func (h *Handler) GetLeaveRequestsByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(domain.LeaveStatusPending)
	}
	if err := h.validate.Var(status, "oneof=pending approved rejected cancelled"); err != nil {
		h.errorResponse(w, r, "请假单状态无效")
		return
	}

	lrs, err := h.repository.GetLeaveRequestsByStatus(domain.LeaveStatus(status))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取请假单列表成功", lrs)
}

func (h *Handler) UpdateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	if lr.StaffID != myInfo.ID {
		h.errorResponse(w, r, "只能修改自己的请假申请")
		return
	}
	if lr.Status.IsTerminal() {
		h.errorResponse(w, r, "请假单已处理，无法修改")
		return
	}

	var req struct {
		LeaveType          *string `json:"leaveType" validate:"omitempty,oneof=病假 休假 事假 急假 产假 丧假 年假 无薪假"`
		StartDate          *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
		EndDate            *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		StartTime          *string `json:"startTime"`
		EndTime            *string `json:"endTime"`
		IsFullDay          *bool   `json:"isFullDay"`
		Reason             *string `json:"reason"`
		ReplacementStaffID *int64  `json:"replacementStaffID"`
		EmergencyContact   *string `json:"emergencyContact"`
		Notes              *string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.LeaveType != nil {
		lr.LeaveType = domain.LeaveType(*req.LeaveType)
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		lr.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		lr.EndDate = endDate
	}
	if req.StartTime != nil {
		lr.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		lr.EndTime = req.EndTime
	}
	if req.IsFullDay != nil {
		lr.IsFullDay = *req.IsFullDay
	}
	if req.Reason != nil {
		lr.Reason = *req.Reason
	}
	if req.ReplacementStaffID != nil {
		replacement, err := h.repository.GetStaffByID(*req.ReplacementStaffID)
		if err != nil {
			h.errorResponse(w, r, "顶班员工不存在")
			return
		}
		if !replacement.IsActive {
			h.errorResponse(w, r, "顶班员工已离职")
			return
		}
		lr.ReplacementStaffID = req.ReplacementStaffID
	}
	if req.EmergencyContact != nil {
		lr.EmergencyContact = req.EmergencyContact
	}
	if req.Notes != nil {
		lr.Notes = *req.Notes
	}

	if err := utils.ValidateLeaveDateRange(lr.StartDate, lr.EndDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	_, overlapped, err := h.repository.HasApprovedLeaveOverlap(lr.StaffID, lr.StartDate, lr.EndDate, &lr.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if overlapped {
		h.errorResponse(w, r, "请假时间与已批准的请假重叠")
		return
	}

	// 日期可能已变化，重新快照受影响的班次
	affected, err := h.repository.GetShiftsInRange(lr.StaffID, lr.StartDate, lr.EndDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	lr.AffectedShiftIDs = make([]int64, 0, len(affected))
	for _, shift := range affected {
		lr.AffectedShiftIDs = append(lr.AffectedShiftIDs, shift.ID)
	}
	lr.TotalDays = coordinator.InclusiveDays(lr.StartDate, lr.EndDate)

	if err := h.repository.UpdateLeaveRequest(lr); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "请假单已处理，无法修改")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新请假申请成功", lr)
}

func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	var req struct {
		ApprovalNotes string `json:"approvalNotes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !lr.Status.CanTransitionTo(domain.LeaveStatusApproved) {
		h.errorResponse(w, r, "请假单已处理")
		return
	}

	// 等待审批期间可能有其他请假被批准，审批前再查一次重叠
	_, overlapped, err := h.repository.HasApprovedLeaveOverlap(lr.StaffID, lr.StartDate, lr.EndDate, &lr.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if overlapped {
		h.errorResponse(w, r, "请假时间与已批准的请假重叠，无法批准")
		return
	}

	var affected []*domain.Shift
	if len(lr.AffectedShiftIDs) > 0 {
		affected, err = h.repository.GetShiftsByIDs(lr.AffectedShiftIDs)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	now := time.Now()
	replacements := coordinator.PlanLeaveReplacements(lr, affected, myInfo.ID, now)

	lr.ApprovedBy = &myInfo.ID
	lr.ApprovalDate = &now
	lr.ApprovalNotes = req.ApprovalNotes

	if err := h.repository.ApproveLeaveRequest(lr, coordinator.CancelNote(lr), replacements); err != nil {
		var conflictErr *domain.ShiftConflictError
		switch {
		case errors.As(err, &conflictErr):
			h.errorResponse(w, r, "顶班员工当天已有班次，无法批准")
		case errors.Is(err, domain.ErrLeaveOverlap):
			h.errorResponse(w, r, "请假时间与已批准的请假重叠，无法批准")
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "请假单已被处理，请刷新后重试")
		case errors.Is(err, domain.ErrInvalidTransition):
			h.errorResponse(w, r, "受影响的班次状态已变化，无法批准")
		case errors.Is(err, domain.ErrShiftNotFound):
			h.errorResponse(w, r, "受影响的班次不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 通知申请人审批结果
	requester, err := h.repository.GetStaffByID(lr.StaffID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "leave_decision",
		To:   requester.Email,
		Data: domain.LeaveDecisionMailData{
			FullName:    requester.FullName,
			RequestCode: lr.RequestCode,
			LeaveType:   string(lr.LeaveType),
			StartDate:   lr.StartDate.Format("2006-01-02"),
			EndDate:     lr.EndDate.Format("2006-01-02"),
			Approved:    true,
			Notes:       lr.ApprovalNotes,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "批准请假成功", lr)
}

func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	var req struct {
		ApprovalNotes string `json:"approvalNotes" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !lr.Status.CanTransitionTo(domain.LeaveStatusRejected) {
		h.errorResponse(w, r, "请假单已处理")
		return
	}

	now := time.Now()
	lr.ApprovedBy = &myInfo.ID
	lr.ApprovalDate = &now
	lr.ApprovalNotes = req.ApprovalNotes

	if err := h.repository.UpdateLeaveRequestStatus(lr, domain.LeaveStatusRejected); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "请假单已被处理，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 通知申请人审批结果
	requester, err := h.repository.GetStaffByID(lr.StaffID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "leave_decision",
		To:   requester.Email,
		Data: domain.LeaveDecisionMailData{
			FullName:    requester.FullName,
			RequestCode: lr.RequestCode,
			LeaveType:   string(lr.LeaveType),
			StartDate:   lr.StartDate.Format("2006-01-02"),
			EndDate:     lr.EndDate.Format("2006-01-02"),
			Approved:    false,
			Notes:       lr.ApprovalNotes,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "驳回请假申请成功", lr)
}

func (h *Handler) CancelLeaveRequest(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	lr := r.Context().Value(LeaveRequestCtx).(*domain.LeaveRequest)

	role := domain.Role(r.Context().Value(RoleCtxKey).(string))
	if lr.StaffID != myInfo.ID && role != domain.RoleScheduler {
		h.errorResponse(w, r, "只能取消自己的请假申请")
		return
	}

	if !lr.Status.CanTransitionTo(domain.LeaveStatusCancelled) {
		h.errorResponse(w, r, "请假单已处理，无法取消")
		return
	}

	if err := h.repository.UpdateLeaveRequestStatus(lr, domain.LeaveStatusCancelled); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "请假单已被处理，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "取消请假申请成功", lr)
}
