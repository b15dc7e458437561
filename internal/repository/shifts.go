package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

// 部分唯一索引 shifts(staff_id, date) WHERE status <> 'cancelled'
// 一人一天最多一个未取消班次的不变量由它在数据库层保证，
// 并发的先查后插由索引兜底，不依赖应用层检查
const shiftActiveConstraint = "shifts_staff_date_active_key"

func isShiftConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == shiftActiveConstraint
}

const shiftColumns = `id, staff_id, date, shift_type, start_time, end_time, department, ward, work_type, status, confirmed_by, confirmed_at, notes, created_by, created_at, version`

func scanShift(row interface{ Scan(...any) error }) (*domain.Shift, error) {
	shift := &domain.Shift{}
	dst := []any{
		&shift.ID,
		&shift.StaffID,
		&shift.Date,
		&shift.ShiftType,
		&shift.StartTime,
		&shift.EndTime,
		&shift.Department,
		&shift.Ward,
		&shift.WorkType,
		&shift.Status,
		&shift.ConfirmedBy,
		&shift.ConfirmedAt,
		&shift.Notes,
		&shift.CreatedBy,
		&shift.CreatedAt,
		&shift.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, query, id))
}

// GetActiveShift 返回员工在指定日期的唯一一个未取消班次
// 不存在时返回 sql.ErrNoRows
func (r *Repository) GetActiveShift(staffID int64, date time.Time) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE staff_id = $1 AND date = $2 AND status <> 'cancelled'`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, query, staffID, date))
}

// CreateShift 以调用方指定的状态插入新班次（直接排班时为 scheduled，顶班/接班时为 confirmed）
// 员工当天已有未取消班次时返回 ShiftConflictError（带上冲突班次的 ID）
func (r *Repository) CreateShift(shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (staff_id, date, shift_type, start_time, end_time, department, ward, work_type, status, confirmed_by, confirmed_at, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

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
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		if isShiftConflict(err) {
			conflictErr := &domain.ShiftConflictError{StaffID: shift.StaffID, Date: shift.Date}
			// 带上冲突班次的 ID，方便调用方提示
			if existing, lookupErr := r.GetActiveShift(shift.StaffID, shift.Date); lookupErr == nil {
				conflictErr.ConflictShiftID = existing.ID
			}
			return conflictErr
		}
		return err
	}

	return nil
}

// UpdateShiftStatus 按状态机推进班次状态，使用乐观锁防止并发覆盖
// 非法变更返回 InvalidTransitionError
func (r *Repository) UpdateShiftStatus(shift *domain.Shift, newStatus domain.ShiftStatus) error {
	if !shift.Status.CanTransitionTo(newStatus) {
		return &domain.InvalidTransitionError{ShiftID: shift.ID, From: shift.Status, To: newStatus}
	}

	query := `
		UPDATE shifts
		SET
			status = $1,
			confirmed_by = $2,
			confirmed_at = $3,
			notes = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{newStatus, shift.ConfirmedBy, shift.ConfirmedAt, shift.Notes, shift.ID, shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.Version); err != nil {
		return err
	}

	shift.Status = newStatus
	return nil
}

// GetShiftsInRange 查询员工在闭区间 [start, end] 内的所有未取消班次
// 走 (staff_id, date) 索引，不在内存中过滤全表
func (r *Repository) GetShiftsInRange(staffID int64, start, end time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE staff_id = $1 AND date BETWEEN $2 AND $3 AND status <> 'cancelled'
		ORDER BY date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// GetShiftsByStaffID 员工的全部班次（含已取消），供展示使用
func (r *Repository) GetShiftsByStaffID(staffID int64) ([]*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE staff_id = $1 ORDER BY date DESC`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// GetShiftsByIDs 按 ID 批量查询班次
func (r *Repository) GetShiftsByIDs(ids []int64) ([]*domain.Shift, error) {
	if len(ids) == 0 {
		return []*domain.Shift{}, nil
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = ANY($1)`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0, len(ids))
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// ApplyTemplateWeek 在一个事务中批量插入模板展开出来的班次
// 与已有未取消班次冲突的行通过 ON CONFLICT DO NOTHING 静默跳过（并发下同样成立），
// 返回实际创建的班次 ID
func (r *Repository) ApplyTemplateWeek(shifts []*domain.Shift) ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shifts (staff_id, date, shift_type, start_time, end_time, department, ward, work_type, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (staff_id, date) WHERE status <> 'cancelled' DO NOTHING
		RETURNING id
	`

	createdIDs := make([]int64, 0, len(shifts))
	for _, shift := range shifts {
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
			shift.Notes,
			shift.CreatedBy,
		}

		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// 该行与已有班次冲突，被静默跳过
				continue
			}
			return nil, err
		}

		shift.ID = id
		createdIDs = append(createdIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return createdIDs, nil
}
