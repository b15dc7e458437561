package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/wardline-dev/roster-coordinator/backend/internal/config"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
	"github.com/wardline-dev/roster-coordinator/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/staff", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Post("/", h.CreateStaff)
			r.Get("/", h.GetAllStaffInfo) // 员工之间允许互相查看基础信息
			r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler})).Get("/available", h.FindAvailableStaff)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.staffInfo)
				r.Get("/", h.GetStaffInfo)
				r.Get("/shifts", h.GetStaffShifts)
				r.Get("/used-leave-days", h.GetStaffUsedLeaveDays)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Patch("/", h.UpdateStaff)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Delete("/", h.DeleteStaff)
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Patch("/password", h.UpdateStaffPassword)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).With(h.myInfo).Post("/", h.CreateShift)
			r.With(h.myInfo).Get("/", h.GetMyShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shift)
				r.Get("/", h.GetShift)
				r.With(h.myInfo).Post("/confirm", h.ConfirmShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler}), h.myInfo).Post("/complete", h.CompleteShift)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler}), h.myInfo).Post("/cancel", h.CancelShift)
			})
		})

		r.Route("/leave-requests", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Post("/", h.CreateLeaveRequest)
			r.Get("/mine", h.GetMyLeaveRequests)
			r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler})).Get("/", h.GetLeaveRequestsByStatus)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.leaveRequest)
				r.Get("/", h.GetLeaveRequest)
				r.Patch("/", h.UpdateLeaveRequest)
				r.Post("/cancel", h.CancelLeaveRequest)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler})).Post("/approve", h.ApproveLeaveRequest)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler})).Post("/reject", h.RejectLeaveRequest)
			})
		})

		r.Route("/shift-transfers", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Post("/", h.CreateShiftTransfer)
			r.Get("/mine", h.GetMyShiftTransfers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftTransfer)
				r.Get("/", h.GetShiftTransfer)
				r.Post("/cancel", h.CancelShiftTransfer)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler})).Post("/approve", h.ApproveShiftTransfer)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler})).Post("/reject", h.RejectShiftTransfer)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSupervisor, domain.RoleScheduler})).Post("/complete", h.CompleteShiftTransfer)
			})
		})

		r.Route("/schedule-templates", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Post("/", h.CreateScheduleTemplate)
			r.Get("/", h.GetAllScheduleTemplates)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scheduleTemplate)
				r.Get("/", h.GetScheduleTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Patch("/", h.UpdateScheduleTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Delete("/", h.DeleteScheduleTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler})).Post("/suggest", h.SuggestAssignments)
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler}), h.myInfo).Post("/apply", h.ApplyScheduleTemplate)
			})
		})
	})
}
