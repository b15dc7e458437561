package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

const shiftTransferColumns = `id, from_staff_id, to_staff_id, original_shift_id, transfer_date, reason, compensation_required, notes, transfer_code, status, approved_by, approval_date, approval_notes, new_shift_id, request_date, version`

func scanShiftTransfer(row interface{ Scan(...any) error }) (*domain.ShiftTransfer, error) {
	transfer := &domain.ShiftTransfer{}
	dst := []any{
		&transfer.ID,
		&transfer.FromStaffID,
		&transfer.ToStaffID,
		&transfer.OriginalShiftID,
		&transfer.TransferDate,
		&transfer.Reason,
		&transfer.CompensationRequired,
		&transfer.Notes,
		&transfer.TransferCode,
		&transfer.Status,
		&transfer.ApprovedBy,
		&transfer.ApprovalDate,
		&transfer.ApprovalNotes,
		&transfer.NewShiftID,
		&transfer.RequestDate,
		&transfer.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return transfer, nil
}

// CreateShiftTransfer 插入换班申请并在同一个事务中把原班次置为 transferred
// 原班次必须处于 scheduled 或 confirmed 状态，否则申请创建失败
func (r *Repository) CreateShiftTransfer(transfer *domain.ShiftTransfer) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shifts
		SET status = 'transferred', version = version + 1
		WHERE id = $1 AND status IN ('scheduled', 'confirmed')
	`

	result, err := tx.ExecContext(ctx, query, transfer.OriginalShiftID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var status domain.ShiftStatus
		if err := tx.QueryRowContext(ctx, `SELECT status FROM shifts WHERE id = $1`, transfer.OriginalShiftID).Scan(&status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrShiftNotFound
			}
			return err
		}
		return &domain.InvalidTransitionError{ShiftID: transfer.OriginalShiftID, From: status, To: domain.ShiftStatusTransferred}
	}

	query = `
		INSERT INTO shift_transfers (from_staff_id, to_staff_id, original_shift_id, transfer_date, reason, compensation_required, notes, transfer_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, request_date, version
	`

	args := []any{
		transfer.FromStaffID,
		transfer.ToStaffID,
		transfer.OriginalShiftID,
		transfer.TransferDate,
		transfer.Reason,
		transfer.CompensationRequired,
		transfer.Notes,
		transfer.TransferCode,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&transfer.ID, &transfer.Status, &transfer.RequestDate, &transfer.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftTransferByID(id int64) (*domain.ShiftTransfer, error) {
	query := `SELECT ` + shiftTransferColumns + ` FROM shift_transfers WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanShiftTransfer(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetShiftTransfersByStaffID(staffID int64) ([]*domain.ShiftTransfer, error) {
	query := `
		SELECT ` + shiftTransferColumns + `
		FROM shift_transfers
		WHERE from_staff_id = $1 OR to_staff_id = $1
		ORDER BY request_date DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := make([]*domain.ShiftTransfer, 0)
	for rows.Next() {
		transfer, err := scanShiftTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transfers, nil
}

// ApproveShiftTransfer 批准换班，单个事务：
//  1. 为接班人插入 confirmed 状态的新班次（接班人当天已有班次时整体失败）
//  2. 把申请改为 approved 并记录新班次 ID 和审批信息
func (r *Repository) ApproveShiftTransfer(transfer *domain.ShiftTransfer, newShift *domain.Shift) error {
	if !transfer.Status.CanTransitionTo(domain.TransferStatusApproved) {
		return domain.ErrInvalidState
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shifts (staff_id, date, shift_type, start_time, end_time, department, ward, work_type, status, confirmed_by, confirmed_at, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, version
	`

	args := []any{
		newShift.StaffID,
		newShift.Date,
		newShift.ShiftType,
		newShift.StartTime,
		newShift.EndTime,
		newShift.Department,
		newShift.Ward,
		newShift.WorkType,
		newShift.Status,
		newShift.ConfirmedBy,
		newShift.ConfirmedAt,
		newShift.Notes,
		newShift.CreatedBy,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&newShift.ID, &newShift.CreatedAt, &newShift.Version); err != nil {
		if isShiftConflict(err) {
			return &domain.ShiftConflictError{StaffID: newShift.StaffID, Date: newShift.Date}
		}
		return err
	}

	query = `
		UPDATE shift_transfers
		SET
			status = 'approved',
			new_shift_id = $1,
			approved_by = $2,
			approval_date = $3,
			approval_notes = $4,
			version = version + 1
		WHERE id = $5 AND status = 'pending' AND version = $6
		RETURNING version
	`

	args = []any{newShift.ID, transfer.ApprovedBy, transfer.ApprovalDate, transfer.ApprovalNotes, transfer.ID, transfer.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&transfer.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidState
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	transfer.Status = domain.TransferStatusApproved
	transfer.NewShiftID = &newShift.ID
	return nil
}

// RevertShiftTransfer 驳回或撤销待审批的换班申请，单个事务：
// 原班次从 transferred 回到 confirmed，申请进入终态
func (r *Repository) RevertShiftTransfer(transfer *domain.ShiftTransfer, newStatus domain.TransferStatus) error {
	if !transfer.Status.CanTransitionTo(newStatus) {
		return domain.ErrInvalidState
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shifts
		SET status = 'confirmed', version = version + 1
		WHERE id = $1 AND status = 'transferred'
	`

	if _, err := tx.ExecContext(ctx, query, transfer.OriginalShiftID); err != nil {
		return err
	}

	query = `
		UPDATE shift_transfers
		SET
			status = $1,
			approved_by = $2,
			approval_date = $3,
			approval_notes = $4,
			version = version + 1
		WHERE id = $5 AND status = 'pending' AND version = $6
		RETURNING version
	`

	args := []any{newStatus, transfer.ApprovedBy, transfer.ApprovalDate, transfer.ApprovalNotes, transfer.ID, transfer.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&transfer.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidState
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	transfer.Status = newStatus
	return nil
}

// CompleteShiftTransfer 把已批准的换班标记为完成，纯记账，不触碰任何班次
// 重复调用时申请已不在 approved 状态，返回 ErrInvalidState
func (r *Repository) CompleteShiftTransfer(transfer *domain.ShiftTransfer) error {
	if !transfer.Status.CanTransitionTo(domain.TransferStatusCompleted) {
		return domain.ErrInvalidState
	}

	query := `
		UPDATE shift_transfers
		SET status = 'completed', version = version + 1
		WHERE id = $1 AND status = 'approved' AND version = $2
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, transfer.ID, transfer.Version).Scan(&transfer.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidState
		}
		return err
	}

	transfer.Status = domain.TransferStatusCompleted
	return nil
}
