package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wardline-dev/roster-coordinator/backend/internal/coordinator"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
	"github.com/wardline-dev/roster-coordinator/backend/internal/scheduler"
	"github.com/wardline-dev/roster-coordinator/backend/internal/utils"
)

func (h *Handler) GetAllScheduleTemplates(w http.ResponseWriter, r *http.Request) {
	sts, err := h.repository.GetAllScheduleTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排班模板成功", sts)
}

func (h *Handler) CreateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string  `json:"name" validate:"required"`
		Department string  `json:"department" validate:"required"`
		ValidFrom  string  `json:"validFrom" validate:"required,datetime=2006-01-02"`
		ValidTo    *string `json:"validTo" validate:"omitempty,datetime=2006-01-02"`
		Shifts     []struct {
			DayOfWeek          int32    `json:"dayOfWeek" validate:"required,gte=1,lte=7"`
			ShiftType          string   `json:"shiftType" validate:"required,oneof=早班 午班 夜班 全天班 待命班"`
			StartTime          string   `json:"startTime" validate:"required"`
			EndTime            string   `json:"endTime" validate:"required"`
			RequiredStaffCount int32    `json:"requiredStaffCount" validate:"required,gte=1"`
			RequiredRoles      []string `json:"requiredRoles" validate:"omitempty,dive,oneof=普通员工 科室主管 排班管理员"`
		} `json:"shifts" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var validTo *time.Time
	if req.ValidTo != nil {
		parsed, err := time.Parse("2006-01-02", *req.ValidTo)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		validTo = &parsed
	}

	if err := utils.ValidateTemplateValidity(validFrom, validTo); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := &domain.ScheduleTemplate{
		Name:       req.Name,
		Department: req.Department,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
		IsActive:   true,
		Shifts:     make([]domain.ScheduleTemplateShift, 0, len(req.Shifts)),
	}

	for _, shift := range req.Shifts {
		st.Shifts = append(st.Shifts, domain.ScheduleTemplateShift{
			DayOfWeek:          shift.DayOfWeek,
			ShiftType:          domain.ShiftType(shift.ShiftType),
			StartTime:          shift.StartTime,
			EndTime:            shift.EndTime,
			RequiredStaffCount: shift.RequiredStaffCount,
			RequiredRoles:      shift.RequiredRoles,
		})
	}

	if err := utils.ValidateScheduleTemplateShifts(st); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateScheduleTemplate(st); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "schedule_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建模板成功", st)
}

func (h *Handler) GetScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	h.successResponse(w, r, "获取模板成功", st)
}

// UpdateScheduleTemplate 只允许修改模板的元信息，班次定义创建后不允许变更
func (h *Handler) UpdateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	var req struct {
		Name       *string `json:"name"`
		Department *string `json:"department"`
		ValidTo    *string `json:"validTo" validate:"omitempty,datetime=2006-01-02"`
		IsActive   *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Department != nil {
		st.Department = *req.Department
	}
	if req.ValidTo != nil {
		parsed, err := time.Parse("2006-01-02", *req.ValidTo)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		if err := utils.ValidateTemplateValidity(st.ValidFrom, &parsed); err != nil {
			h.badRequest(w, r, err)
			return
		}
		st.ValidTo = &parsed
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateScheduleTemplate(st); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "schedule_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新模板成功", st)
}

func (h *Handler) DeleteScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	if err := h.repository.DeleteScheduleTemplate(st.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除模板成功", nil)
}

// SuggestAssignments 用遗传算法生成一周的指派建议，排班员确认后再套用模板
func (h *Handler) SuggestAssignments(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	// 获取参数
	var req struct {
		PopulationSize int32   `json:"populationSize" validate:"required,min=1"`
		MaxGenerations int32   `json:"maxGenerations" validate:"required,min=1"`
		CrossoverRate  float64 `json:"crossoverRate" validate:"required,min=0,max=1"`
		MutationRate   float64 `json:"mutationRate" validate:"required,min=0,max=1"`
		EliteCount     int32   `json:"eliteCount" validate:"min=0,ltefield=PopulationSize"`
		FairnessWeight float64 `json:"fairnessWeight" validate:"required,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 构建参数
	parameters := &scheduler.Parameters{
		PopulationSize: req.PopulationSize,
		MaxGenerations: req.MaxGenerations,
		CrossoverRate:  req.CrossoverRate,
		MutationRate:   req.MutationRate,
		EliteCount:     req.EliteCount,
		FairnessWeight: req.FairnessWeight,
	}

	// 候选人为模板所属科室的在职员工
	staffs, err := h.repository.ListActiveStaffByDepartment(st.Department)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	sched, err := scheduler.New(parameters, staffs, st)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	assignments, err := sched.Schedule()
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "生成指派建议成功", assignments)
}

// ApplyScheduleTemplate 将模板套用到某一周，有冲突的指派静默跳过，不影响其余班次的生成
func (h *Handler) ApplyScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	st := r.Context().Value(ScheduleTemplateCtx).(*domain.ScheduleTemplate)

	var req struct {
		WeekStart   string `json:"weekStart" validate:"required,datetime=2006-01-02"`
		Assignments []struct {
			StaffID   int64  `json:"staffID" validate:"required"`
			DayOfWeek int32  `json:"dayOfWeek" validate:"required,gte=1,lte=7"`
			ShiftType string `json:"shiftType" validate:"required,oneof=早班 午班 夜班 全天班 待命班"`
		} `json:"assignments" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if weekStart.Weekday() != time.Monday {
		h.errorResponse(w, r, "周起始日期必须为周一")
		return
	}

	if !st.IsActive {
		h.errorResponse(w, r, "模板已停用")
		return
	}
	weekEnd := weekStart.AddDate(0, 0, 6)
	if weekStart.Before(st.ValidFrom) || (st.ValidTo != nil && weekEnd.After(*st.ValidTo)) {
		h.errorResponse(w, r, "目标周不在模板的有效期内")
		return
	}

	assignments := make([]coordinator.WeekAssignment, 0, len(req.Assignments))
	staffIDs := make(map[int64]struct{})
	for _, a := range req.Assignments {
		assignments = append(assignments, coordinator.WeekAssignment{
			StaffID:   a.StaffID,
			DayOfWeek: a.DayOfWeek,
			ShiftType: domain.ShiftType(a.ShiftType),
		})
		staffIDs[a.StaffID] = struct{}{}
	}

	// 预读本周已有班次，让冲突的指派在落库前就被跳过
	var existing []*domain.Shift
	for staffID := range staffIDs {
		shifts, err := h.repository.GetShiftsInRange(staffID, weekStart, weekEnd)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		existing = append(existing, shifts...)
	}

	planned := coordinator.PlanWeekShifts(st, weekStart, assignments, existing, myInfo.ID)

	createdIDs, err := h.repository.ApplyTemplateWeek(planned)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "模板应用成功", map[string]any{
		"requested":       len(req.Assignments),
		"planned":         len(planned),
		"created":         len(createdIDs),
		"createdShiftIDs": createdIDs,
	})
}
