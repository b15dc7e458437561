package domain

import (
	"time"
)

type Role string

const (
	RoleStaff      Role = "普通员工"
	RoleSupervisor Role = "科室主管"
	RoleScheduler  Role = "排班管理员"
)

type Staff struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Department   string    `json:"department"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
