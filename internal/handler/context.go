package handler

type ContextKey string

var (
	RoleCtxKey          ContextKey = "role"
	SubCtxKey           ContextKey = "sub"
	MyInfoCtx           ContextKey = "myInfo"
	StaffInfoCtx        ContextKey = "staffInfo"
	ShiftCtx            ContextKey = "shift"
	LeaveRequestCtx     ContextKey = "leaveRequest"
	ShiftTransferCtx    ContextKey = "shiftTransfer"
	ScheduleTemplateCtx ContextKey = "scheduleTemplate"
)
