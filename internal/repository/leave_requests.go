package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

// 排除约束 leave_requests(staff_id, daterange(start_date, end_date)) WHERE status = 'approved'
// 同一员工已批准请假不重叠的不变量由它在数据库层保证，
// 并发审批两张待审批的重叠请假单时由约束兜底，不依赖应用层检查
const leaveOverlapConstraint = "leave_requests_staff_overlap_excl"

func isLeaveOverlap(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == leaveOverlapConstraint
}

const leaveRequestColumns = `id, staff_id, leave_type, start_date, end_date, start_time, end_time, is_full_day, reason, replacement_staff_id, emergency_contact, notes, request_code, total_days, status, approved_by, approval_date, approval_notes, request_date, version`

func scanLeaveRequest(row interface{ Scan(...any) error }) (*domain.LeaveRequest, error) {
	lr := &domain.LeaveRequest{}
	dst := []any{
		&lr.ID,
		&lr.StaffID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.StartTime,
		&lr.EndTime,
		&lr.IsFullDay,
		&lr.Reason,
		&lr.ReplacementStaffID,
		&lr.EmergencyContact,
		&lr.Notes,
		&lr.RequestCode,
		&lr.TotalDays,
		&lr.Status,
		&lr.ApprovedBy,
		&lr.ApprovalDate,
		&lr.ApprovalNotes,
		&lr.RequestDate,
		&lr.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return lr, nil
}

// CreateLeaveRequest 插入请假单及其受影响班次快照
func (r *Repository) CreateLeaveRequest(lr *domain.LeaveRequest) error {
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
		INSERT INTO leave_requests (staff_id, leave_type, start_date, end_date, start_time, end_time, is_full_day, reason, replacement_staff_id, emergency_contact, notes, request_code, total_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, status, request_date, version
	`

	args := []any{
		lr.StaffID,
		lr.LeaveType,
		lr.StartDate,
		lr.EndDate,
		lr.StartTime,
		lr.EndTime,
		lr.IsFullDay,
		lr.Reason,
		lr.ReplacementStaffID,
		lr.EmergencyContact,
		lr.Notes,
		lr.RequestCode,
		lr.TotalDays,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&lr.ID, &lr.Status, &lr.RequestDate, &lr.Version); err != nil {
		return err
	}

	for _, shiftID := range lr.AffectedShiftIDs {
		query = `
			INSERT INTO leave_request_affected_shifts (leave_request_id, shift_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, lr.ID, shiftID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetLeaveRequestByID(id int64) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`

	lr, err := scanLeaveRequest(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	query = `SELECT shift_id FROM leave_request_affected_shifts WHERE leave_request_id = $1 ORDER BY shift_id`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lr.AffectedShiftIDs = make([]int64, 0)
	for rows.Next() {
		var shiftID int64
		if err := rows.Scan(&shiftID); err != nil {
			return nil, err
		}
		lr.AffectedShiftIDs = append(lr.AffectedShiftIDs, shiftID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lr, nil
}

func (r *Repository) GetLeaveRequestsByStaffID(staffID int64) ([]*domain.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE staff_id = $1 ORDER BY request_date DESC`

	return r.queryLeaveRequests(query, staffID)
}

func (r *Repository) GetLeaveRequestsByStatus(status domain.LeaveStatus) ([]*domain.LeaveRequest, error) {
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE status = $1 ORDER BY request_date DESC`

	return r.queryLeaveRequests(query, status)
}

func (r *Repository) queryLeaveRequests(query string, args ...any) ([]*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lrs := make([]*domain.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		lrs = append(lrs, lr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lrs, nil
}

// UpdateLeaveRequest 更新待审批请假单的内容，并重建受影响班次快照
// 快照先删后插，和请假单更新在同一个事务里
func (r *Repository) UpdateLeaveRequest(lr *domain.LeaveRequest) error {
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
		UPDATE leave_requests
		SET
			leave_type = $1,
			start_date = $2,
			end_date = $3,
			start_time = $4,
			end_time = $5,
			is_full_day = $6,
			reason = $7,
			replacement_staff_id = $8,
			emergency_contact = $9,
			notes = $10,
			total_days = $11,
			version = version + 1
		WHERE id = $12 AND status = 'pending' AND version = $13
		RETURNING version
	`

	args := []any{
		lr.LeaveType,
		lr.StartDate,
		lr.EndDate,
		lr.StartTime,
		lr.EndTime,
		lr.IsFullDay,
		lr.Reason,
		lr.ReplacementStaffID,
		lr.EmergencyContact,
		lr.Notes,
		lr.TotalDays,
		lr.ID,
		lr.Version,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&lr.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidState
		}
		return err
	}

	query = `DELETE FROM leave_request_affected_shifts WHERE leave_request_id = $1`
	if _, err := tx.ExecContext(ctx, query, lr.ID); err != nil {
		return err
	}

	for _, shiftID := range lr.AffectedShiftIDs {
		query = `
			INSERT INTO leave_request_affected_shifts (leave_request_id, shift_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, lr.ID, shiftID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// HasApprovedLeaveOverlap 检查员工是否已有与 [start, end] 重叠的已批准请假
// excludeRequestID 不为 nil 时排除该请假单自身（编辑场景）
// 存在重叠时返回冲突请假单的 ID
func (r *Repository) HasApprovedLeaveOverlap(staffID int64, start, end time.Time, excludeRequestID *int64) (int64, bool, error) {
	// 闭区间重叠：start_date <= $3 AND $2 <= end_date
	query := `
		SELECT id FROM leave_requests
		WHERE staff_id = $1
			AND status = 'approved'
			AND start_date <= $3
			AND end_date >= $2
			AND ($4::bigint IS NULL OR id <> $4)
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var conflictID int64
	if err := r.dbpool.QueryRowContext(ctx, query, staffID, start, end, excludeRequestID).Scan(&conflictID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}

	return conflictID, true, nil
}

// ApproveLeaveRequest 批准请假单，整个补偿序列在一个事务中执行：
//  1. 把快照中的每个受影响班次改为 cancelled 并在备注中注明请假原因
//  2. 为顶班员工插入 confirmed 状态的顶班班次
//  3. 把请假单改为 approved 并盖上审批信息
//
// 任何一步失败整个事务回滚，不会留下部分状态
func (r *Repository) ApproveLeaveRequest(lr *domain.LeaveRequest, cancelNote string, replacements []*domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 取消受影响班次
	// 快照之后班次可能已经走到其他状态，只有 scheduled/confirmed 允许被取消，
	// 已取消的跳过，其余状态说明快照已失效，整个审批失败
	for _, shiftID := range lr.AffectedShiftIDs {
		query := `
			UPDATE shifts
			SET
				status = 'cancelled',
				notes = TRIM(BOTH E'\n' FROM notes || E'\n' || $1),
				version = version + 1
			WHERE id = $2 AND status IN ('scheduled', 'confirmed')
		`

		result, err := tx.ExecContext(ctx, query, cancelNote, shiftID)
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			var status domain.ShiftStatus
			if err := tx.QueryRowContext(ctx, `SELECT status FROM shifts WHERE id = $1`, shiftID).Scan(&status); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return domain.ErrShiftNotFound
				}
				return err
			}
			if status == domain.ShiftStatusCancelled {
				continue
			}
			return &domain.InvalidTransitionError{ShiftID: shiftID, From: status, To: domain.ShiftStatusCancelled}
		}
	}

	// 插入顶班班次
	// 顶班员工当天已有班次时违反唯一索引，整个审批失败
	for _, shift := range replacements {
		query := `
			INSERT INTO shifts (staff_id, date, shift_type, start_time, end_time, department, ward, work_type, status, confirmed_by, confirmed_at, notes, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, version
		`

		args := []any{
			shift.StaffID,
			shift.Date,
			shift.ShiftType,
			shift.StartTime,
			shift.EndTime,
			shift.Department,
			shift.Ward,
			shift.WorkType,
			shift.Status,
			shift.ConfirmedBy,
			shift.ConfirmedAt,
			shift.Notes,
			shift.CreatedBy,
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
			if isShiftConflict(err) {
				return &domain.ShiftConflictError{StaffID: shift.StaffID, Date: shift.Date}
			}
			return err
		}
	}

	// 更新请假单状态
	// 重叠检查放在同一条 UPDATE 里，避免审批间隙其他请假被批准后仍然通过，
	// 本事务看不到的未提交审批由排除约束在提交时兜底
	query := `
		UPDATE leave_requests
		SET
			status = 'approved',
			approved_by = $1,
			approval_date = $2,
			approval_notes = $3,
			version = version + 1
		WHERE id = $4 AND status = 'pending' AND version = $5
			AND NOT EXISTS (
				SELECT 1 FROM leave_requests other
				WHERE other.staff_id = $6
					AND other.status = 'approved'
					AND other.start_date <= $8
					AND other.end_date >= $7
					AND other.id <> $4
			)
		RETURNING version
	`

	args := []any{lr.ApprovedBy, lr.ApprovalDate, lr.ApprovalNotes, lr.ID, lr.Version, lr.StaffID, lr.StartDate, lr.EndDate}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&lr.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// 区分是请假单状态变了还是撞上了已批准的重叠请假
			var conflictID int64
			overlapQuery := `
				SELECT id FROM leave_requests
				WHERE staff_id = $1
					AND status = 'approved'
					AND start_date <= $3
					AND end_date >= $2
					AND id <> $4
				LIMIT 1
			`
			if overlapErr := tx.QueryRowContext(ctx, overlapQuery, lr.StaffID, lr.StartDate, lr.EndDate, lr.ID).Scan(&conflictID); overlapErr == nil {
				return &domain.LeaveOverlapError{StaffID: lr.StaffID, ConflictRequestID: conflictID}
			} else if !errors.Is(overlapErr, sql.ErrNoRows) {
				return overlapErr
			}
			return domain.ErrInvalidState
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if isLeaveOverlap(err) {
			return &domain.LeaveOverlapError{StaffID: lr.StaffID}
		}
		return err
	}

	lr.Status = domain.LeaveStatusApproved
	return nil
}

// UpdateLeaveRequestStatus 驳回或撤销待审批的请假单，只改状态，不触碰任何班次
func (r *Repository) UpdateLeaveRequestStatus(lr *domain.LeaveRequest, newStatus domain.LeaveStatus) error {
	query := `
		UPDATE leave_requests
		SET
			status = $1,
			approved_by = $2,
			approval_date = $3,
			approval_notes = $4,
			version = version + 1
		WHERE id = $5 AND status = 'pending' AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{newStatus, lr.ApprovedBy, lr.ApprovalDate, lr.ApprovalNotes, lr.ID, lr.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&lr.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvalidState
		}
		return err
	}

	lr.Status = newStatus
	return nil
}

// SumUsedLeaveDays 统计员工某一年度内已批准请假的总天数和按类型的明细
// 只统计整个区间都落在该年度内的请假单
func (r *Repository) SumUsedLeaveDays(staffID int64, year int, leaveType *domain.LeaveType) (int32, map[domain.LeaveType]int32, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	query := `
		SELECT leave_type, COALESCE(SUM(total_days), 0)
		FROM leave_requests
		WHERE staff_id = $1
			AND status = 'approved'
			AND start_date >= $2
			AND end_date <= $3
			AND ($4::text IS NULL OR leave_type = $4)
		GROUP BY leave_type
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, staffID, yearStart, yearEnd, leaveType)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	var total int32
	breakdown := make(map[domain.LeaveType]int32)
	for rows.Next() {
		var lt domain.LeaveType
		var days int32
		if err := rows.Scan(&lt, &days); err != nil {
			return 0, nil, err
		}
		breakdown[lt] = days
		total += days
	}

	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	return total, breakdown, nil
}
