package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateStaffMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

// LeaveDecisionMailData 请假审批结果通知
type LeaveDecisionMailData struct {
	FullName    string `json:"fullName"`
	RequestCode string `json:"requestCode"`
	LeaveType   string `json:"leaveType"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Approved    bool   `json:"approved"`
	Notes       string `json:"notes"`
}

// TransferDecisionMailData 换班审批结果通知
type TransferDecisionMailData struct {
	FullName     string `json:"fullName"`
	TransferCode string `json:"transferCode"`
	TransferDate string `json:"transferDate"`
	Approved     bool   `json:"approved"`
	Notes        string `json:"notes"`
}
