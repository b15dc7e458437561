package handler

import (
	"context"
	"database/sql"
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

func (h *Handler) CreateShiftTransfer(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	var req struct {
		OriginalShiftID      int64  `json:"originalShiftID" validate:"required"`
		ToStaffID            int64  `json:"toStaffID" validate:"required"`
		Reason               string `json:"reason" validate:"required"`
		CompensationRequired bool   `json:"compensationRequired"`
		Notes                string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	original, err := h.repository.GetShiftByID(req.OriginalShiftID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "班次不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if original.StaffID != myInfo.ID {
		h.errorResponse(w, r, "只能转让自己的班次")
		return
	}
	if !coordinator.CanCreateTransfer(original) {
		h.errorResponse(w, r, "当前状态的班次无法转让")
		return
	}
	if req.ToStaffID == myInfo.ID {
		h.errorResponse(w, r, "不能将班次转让给自己")
		return
	}

	toStaff, err := h.repository.GetStaffByID(req.ToStaffID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "接班员工不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if !toStaff.IsActive {
		h.errorResponse(w, r, "接班员工已离职")
		return
	}

	if _, err := h.repository.GetActiveShift(req.ToStaffID, original.Date); err == nil {
		h.errorResponse(w, r, "接班员工当天已有班次")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		h.internalServerError(w, r, err)
		return
	}

	transfer := &domain.ShiftTransfer{
		FromStaffID:          myInfo.ID,
		ToStaffID:            req.ToStaffID,
		OriginalShiftID:      original.ID,
		TransferDate:         original.Date,
		Reason:               req.Reason,
		CompensationRequired: req.CompensationRequired,
		Notes:                req.Notes,
		TransferCode:         utils.GenerateRequestCode(utils.ShiftTransferCodePrefix, time.Now()),
		Status:               domain.TransferStatusPending,
	}

	// 单号撞号时重新生成再试
	var createErr error
	for attempt := 0; attempt < 3; attempt++ {
		createErr = h.repository.CreateShiftTransfer(transfer)

		var pgErr *pgconn.PgError
		if errors.As(createErr, &pgErr) && pgErr.ConstraintName == "shift_transfers_transfer_code_key" {
			transfer.TransferCode = utils.GenerateRequestCode(utils.ShiftTransferCodePrefix, time.Now())
			continue
		}
		break
	}
	if createErr != nil {
		switch {
		case errors.Is(createErr, domain.ErrShiftNotFound):
			h.errorResponse(w, r, "班次不存在")
		case errors.Is(createErr, domain.ErrInvalidTransition):
			h.errorResponse(w, r, "当前状态的班次无法转让")
		default:
			h.internalServerError(w, r, createErr)
		}
		return
	}

	h.successResponse(w, r, "提交换班申请成功", transfer)
}

func (h *Handler) GetShiftTransfer(w http.ResponseWriter, r *http.Request) {
	transfer := r.Context().Value(ShiftTransferCtx).(*domain.ShiftTransfer)
	h.successResponse(w, r, "获取换班申请成功", transfer)
}

func (h *Handler) GetMyShiftTransfers(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	transfers, err := h.repository.GetShiftTransfersByStaffID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取个人换班记录成功", transfers)
}

func (h *Handler) ApproveShiftTransfer(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	transfer := r.Context().Value(ShiftTransferCtx).(*domain.ShiftTransfer)

	var req struct {
		ApprovalNotes string `json:"approvalNotes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !transfer.Status.CanTransitionTo(domain.TransferStatusApproved) {
		h.errorResponse(w, r, "换班申请已处理")
		return
	}

	original, err := h.repository.GetShiftByID(transfer.OriginalShiftID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "原班次不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	now := time.Now()
	newShift := coordinator.PlanTransferShift(transfer, original, myInfo.ID, now)

	transfer.ApprovedBy = &myInfo.ID
	transfer.ApprovalDate = &now
	transfer.ApprovalNotes = req.ApprovalNotes

	if err := h.repository.ApproveShiftTransfer(transfer, newShift); err != nil {
		var conflictErr *domain.ShiftConflictError
		switch {
		case errors.As(err, &conflictErr):
			h.errorResponse(w, r, "接班员工当天已有班次，无法批准")
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "换班申请已被处理，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 通知发起人审批结果
	fromStaff, err := h.repository.GetStaffByID(transfer.FromStaffID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "transfer_decision",
		To:   fromStaff.Email,
		Data: domain.TransferDecisionMailData{
			FullName:     fromStaff.FullName,
			TransferCode: transfer.TransferCode,
			TransferDate: transfer.TransferDate.Format("2006-01-02"),
			Approved:     true,
			Notes:        transfer.ApprovalNotes,
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

	h.successResponse(w, r, "批准换班成功", transfer)
}

func (h *Handler) RejectShiftTransfer(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	transfer := r.Context().Value(ShiftTransferCtx).(*domain.ShiftTransfer)

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

	if !transfer.Status.CanTransitionTo(domain.TransferStatusRejected) {
		h.errorResponse(w, r, "换班申请已处理")
		return
	}

	now := time.Now()
	transfer.ApprovedBy = &myInfo.ID
	transfer.ApprovalDate = &now
	transfer.ApprovalNotes = req.ApprovalNotes

	// 驳回时原班次退回 confirmed
	if err := h.repository.RevertShiftTransfer(transfer, domain.TransferStatusRejected); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "换班申请已被处理，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 通知发起人审批结果
	fromStaff, err := h.repository.GetStaffByID(transfer.FromStaffID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "transfer_decision",
		To:   fromStaff.Email,
		Data: domain.TransferDecisionMailData{
			FullName:     fromStaff.FullName,
			TransferCode: transfer.TransferCode,
			TransferDate: transfer.TransferDate.Format("2006-01-02"),
			Approved:     false,
			Notes:        transfer.ApprovalNotes,
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

	h.successResponse(w, r, "驳回换班申请成功", transfer)
}

func (h *Handler) CancelShiftTransfer(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	transfer := r.Context().Value(ShiftTransferCtx).(*domain.ShiftTransfer)

	role := domain.Role(r.Context().Value(RoleCtxKey).(string))
	if transfer.FromStaffID != myInfo.ID && role != domain.RoleScheduler {
		h.errorResponse(w, r, "只能取消自己的换班申请")
		return
	}

	if !transfer.Status.CanTransitionTo(domain.TransferStatusCancelled) {
		h.errorResponse(w, r, "换班申请已处理，无法取消")
		return
	}

	// 取消时原班次退回 confirmed
	if err := h.repository.RevertShiftTransfer(transfer, domain.TransferStatusCancelled); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "换班申请已被处理，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "取消换班申请成功", transfer)
}

// CompleteShiftTransfer 换班实际发生后归档
func (h *Handler) CompleteShiftTransfer(w http.ResponseWriter, r *http.Request) {
	transfer := r.Context().Value(ShiftTransferCtx).(*domain.ShiftTransfer)

	if err := h.repository.CompleteShiftTransfer(transfer); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			h.errorResponse(w, r, "只有已批准的换班申请才能归档")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "换班归档成功", transfer)
}
