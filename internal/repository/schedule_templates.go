package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

func (r *Repository) GetAllScheduleTemplates() ([]*domain.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			st.id,
			st.name,
			st.department,
			st.valid_from,
			st.valid_to,
			st.is_active,
			st.created_at,
			st.version,
			sts.id,
			sts.day_of_week,
			sts.shift_type,
			sts.start_time,
			sts.end_time,
			sts.required_staff_count,
			stsr.role
		FROM schedule_templates st
		LEFT JOIN schedule_template_shifts sts ON st.id = sts.template_id
		LEFT JOIN schedule_template_shift_required_roles stsr ON sts.id = stsr.shift_id
		ORDER BY st.id, sts.day_of_week, sts.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templatesMap := make(map[int64]*domain.ScheduleTemplate)
	shiftsMap := make(map[int64]map[int64]*domain.ScheduleTemplateShift) // templateID -> shiftID -> shift
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID         int64
			Name       string
			Department string
			ValidFrom  time.Time
			ValidTo    *time.Time
			IsActive   bool
			CreatedAt  time.Time
			Version    int32

			ShiftID            sql.NullInt64
			DayOfWeek          sql.NullInt32
			ShiftType          sql.NullString
			StartTime          sql.NullString
			EndTime            sql.NullString
			RequiredStaffCount sql.NullInt32
			Role               sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Department,
			&row.ValidFrom,
			&row.ValidTo,
			&row.IsActive,
			&row.CreatedAt,
			&row.Version,
			&row.ShiftID,
			&row.DayOfWeek,
			&row.ShiftType,
			&row.StartTime,
			&row.EndTime,
			&row.RequiredStaffCount,
			&row.Role,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := templatesMap[row.ID]; !exists {
			// 第一次查到这个模板，先初始化
			templatesMap[row.ID] = &domain.ScheduleTemplate{
				ID:         row.ID,
				Name:       row.Name,
				Department: row.Department,
				ValidFrom:  row.ValidFrom,
				ValidTo:    row.ValidTo,
				IsActive:   row.IsActive,
				CreatedAt:  row.CreatedAt,
				Version:    row.Version,
			}
			shiftsMap[row.ID] = make(map[int64]*domain.ScheduleTemplateShift)
			order = append(order, row.ID)
		}

		// shiftID 为空表示这个模板还没有任何班次定义
		if !row.ShiftID.Valid {
			continue
		}

		shift, exists := shiftsMap[row.ID][row.ShiftID.Int64]
		if !exists {
			shift = &domain.ScheduleTemplateShift{
				ID:                 row.ShiftID.Int64,
				DayOfWeek:          row.DayOfWeek.Int32,
				ShiftType:          domain.ShiftType(row.ShiftType.String),
				StartTime:          row.StartTime.String,
				EndTime:            row.EndTime.String,
				RequiredStaffCount: row.RequiredStaffCount.Int32,
				RequiredRoles:      make([]string, 0),
			}
			shiftsMap[row.ID][row.ShiftID.Int64] = shift
		}

		// role 为空表示这个班次不限定角色
		if !row.Role.Valid {
			continue
		}

		shift.RequiredRoles = append(shift.RequiredRoles, row.Role.String)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 组装结果
	templates := make([]*domain.ScheduleTemplate, 0, len(order))
	for _, templateID := range order {
		template := templatesMap[templateID]
		template.Shifts = make([]domain.ScheduleTemplateShift, 0, len(shiftsMap[templateID]))
		for _, shift := range shiftsMap[templateID] {
			template.Shifts = append(template.Shifts, *shift)
		}
		templates = append(templates, template)
	}

	return templates, nil
}

func (r *Repository) CreateScheduleTemplate(template *domain.ScheduleTemplate) error {
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
		INSERT INTO schedule_templates (name, department, valid_from, valid_to, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{template.Name, template.Department, template.ValidFrom, template.ValidTo, template.IsActive}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&template.ID, &template.CreatedAt, &template.Version); err != nil {
		return err
	}

	for i := range template.Shifts {
		query = `
			INSERT INTO schedule_template_shifts (template_id, day_of_week, shift_type, start_time, end_time, required_staff_count)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		params := []any{
			template.ID,
			template.Shifts[i].DayOfWeek,
			template.Shifts[i].ShiftType,
			template.Shifts[i].StartTime,
			template.Shifts[i].EndTime,
			template.Shifts[i].RequiredStaffCount,
		}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&template.Shifts[i].ID); err != nil {
			return err
		}

		for _, role := range template.Shifts[i].RequiredRoles {
			query = `
				INSERT INTO schedule_template_shift_required_roles (shift_id, role)
				VALUES ($1, $2)
			`
			if _, err := tx.ExecContext(ctx, query, template.Shifts[i].ID, role); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetScheduleTemplate(id int64) (*domain.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			st.name,
			st.department,
			st.valid_from,
			st.valid_to,
			st.is_active,
			st.created_at,
			st.version,
			sts.id,
			sts.day_of_week,
			sts.shift_type,
			sts.start_time,
			sts.end_time,
			sts.required_staff_count,
			stsr.role
		FROM schedule_templates st
		LEFT JOIN schedule_template_shifts sts ON st.id = sts.template_id
		LEFT JOIN schedule_template_shift_required_roles stsr ON sts.id = stsr.shift_id
		WHERE st.id = $1
		ORDER BY sts.day_of_week, sts.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	template := &domain.ScheduleTemplate{
		ID: id,
	}
	shiftsMap := make(map[int64]*domain.ScheduleTemplateShift)
	shiftOrder := make([]int64, 0)
	found := false

	for rows.Next() {
		var row struct {
			Name       string
			Department string
			ValidFrom  time.Time
			ValidTo    *time.Time
			IsActive   bool
			CreatedAt  time.Time
			Version    int32

			ShiftID            sql.NullInt64
			DayOfWeek          sql.NullInt32
			ShiftType          sql.NullString
			StartTime          sql.NullString
			EndTime            sql.NullString
			RequiredStaffCount sql.NullInt32
			Role               sql.NullString
		}

		dst := []any{
			&row.Name,
			&row.Department,
			&row.ValidFrom,
			&row.ValidTo,
			&row.IsActive,
			&row.CreatedAt,
			&row.Version,
			&row.ShiftID,
			&row.DayOfWeek,
			&row.ShiftType,
			&row.StartTime,
			&row.EndTime,
			&row.RequiredStaffCount,
			&row.Role,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			template.Name = row.Name
			template.Department = row.Department
			template.ValidFrom = row.ValidFrom
			template.ValidTo = row.ValidTo
			template.IsActive = row.IsActive
			template.CreatedAt = row.CreatedAt
			template.Version = row.Version
			found = true
		}

		if !row.ShiftID.Valid {
			// 该模板不存在任何班次定义
			continue
		}

		shift, exists := shiftsMap[row.ShiftID.Int64]
		if !exists {
			shift = &domain.ScheduleTemplateShift{
				ID:                 row.ShiftID.Int64,
				DayOfWeek:          row.DayOfWeek.Int32,
				ShiftType:          domain.ShiftType(row.ShiftType.String),
				StartTime:          row.StartTime.String,
				EndTime:            row.EndTime.String,
				RequiredStaffCount: row.RequiredStaffCount.Int32,
				RequiredRoles:      make([]string, 0),
			}
			shiftsMap[row.ShiftID.Int64] = shift
			shiftOrder = append(shiftOrder, row.ShiftID.Int64)
		}

		if !row.Role.Valid {
			continue
		}

		shift.RequiredRoles = append(shift.RequiredRoles, row.Role.String)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	template.Shifts = make([]domain.ScheduleTemplateShift, 0, len(shiftOrder))
	for _, shiftID := range shiftOrder {
		template.Shifts = append(template.Shifts, *shiftsMap[shiftID])
	}

	return template, nil
}

// UpdateScheduleTemplate 只允许更新模板的元信息，班次定义创建后不再变更，
// 避免已经按旧定义展开的班次和模板对不上
func (r *Repository) UpdateScheduleTemplate(template *domain.ScheduleTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE schedule_templates
		SET
			name = $1,
			department = $2,
			valid_from = $3,
			valid_to = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{template.Name, template.Department, template.ValidFrom, template.ValidTo, template.IsActive, template.ID, template.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&template.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteScheduleTemplate(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM schedule_templates WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
