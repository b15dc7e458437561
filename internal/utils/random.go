package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// 请假单和换班单的编号前缀
const (
	LeaveRequestCodePrefix  = "LV"
	ShiftTransferCodePrefix = "TR"
)

// GenerateRequestCode 生成对外展示用的单据编号：两位字母前缀 + 提交时间戳 + 三位随机数
// 编号只用于展示，不作为主键，唯一性最终由数据库的唯一约束兜底，
// 冲突时调用方重新生成一次即可
func GenerateRequestCode(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%s%03d", prefix, now.Format("060102150405"), rand.Intn(1000))
}

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleStaff,
	domain.RoleSupervisor,
	domain.RoleScheduler,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var departments = []string{"内科", "外科", "急诊科", "儿科", "妇产科"}

func GenerateRandomDepartment() string {
	return departments[rand.Intn(len(departments))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomStaff(password string, emailDomainName string) (*domain.Staff, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	staff := &domain.Staff{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
		Department:   GenerateRandomDepartment(),
	}

	return staff, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// 每种班次类型对应的默认起止时刻
var shiftTypeTimes = map[domain.ShiftType][2]string{
	domain.ShiftTypeMorning:   {"08:00:00", "16:00:00"},
	domain.ShiftTypeAfternoon: {"14:00:00", "22:00:00"},
	domain.ShiftTypeNight:     {"22:00:00", "06:00:00"},
	domain.ShiftTypeFullDay:   {"08:00:00", "20:00:00"},
	domain.ShiftTypeOnCall:    {"00:00:00", "23:59:59"},
}

var shiftTypes = []domain.ShiftType{
	domain.ShiftTypeMorning,
	domain.ShiftTypeAfternoon,
	domain.ShiftTypeNight,
	domain.ShiftTypeFullDay,
	domain.ShiftTypeOnCall,
}

func GenerateRandomShift(staffID int64, date time.Time, department string, createdBy int64) *domain.Shift {
	shiftType := shiftTypes[rand.Intn(len(shiftTypes))]
	times := shiftTypeTimes[shiftType]

	return &domain.Shift{
		StaffID:    staffID,
		Date:       date,
		ShiftType:  shiftType,
		StartTime:  times[0],
		EndTime:    times[1],
		Department: department,
		WorkType:   domain.WorkTypeRegular,
		Status:     domain.ShiftStatusScheduled,
		CreatedBy:  createdBy,
	}
}

// GenerateRandomScheduleTemplate 随机生成一个周模板，每天 1~3 个不重复类型的班次
func GenerateRandomScheduleTemplate() *domain.ScheduleTemplate {
	template := &domain.ScheduleTemplate{
		Name:       "周班表" + GenerateRandomID(3, 3),
		Department: GenerateRandomDepartment(),
		ValidFrom:  time.Now(),
		IsActive:   true,
	}

	for day := int32(1); day <= 7; day++ {
		shiftNum := rand.Intn(3) + 1
		for i := 0; i < shiftNum; i++ {
			shiftType := shiftTypes[i]
			times := shiftTypeTimes[shiftType]
			template.Shifts = append(template.Shifts, domain.ScheduleTemplateShift{
				DayOfWeek:          day,
				ShiftType:          shiftType,
				StartTime:          times[0],
				EndTime:            times[1],
				RequiredStaffCount: int32(rand.Intn(5) + 1),
			})
		}
	}

	return template
}

var leaveTypes = []domain.LeaveType{
	domain.LeaveTypeSick,
	domain.LeaveTypeVacation,
	domain.LeaveTypePersonal,
	domain.LeaveTypeEmergency,
	domain.LeaveTypeMaternity,
	domain.LeaveTypeBereavement,
	domain.LeaveTypeAnnual,
	domain.LeaveTypeUnpaid,
}

func GenerateRandomLeaveRequest(staffID int64, startDate time.Time) *domain.LeaveRequest {
	days := rand.Intn(5) + 1
	endDate := startDate.AddDate(0, 0, days-1)

	return &domain.LeaveRequest{
		StaffID:     staffID,
		LeaveType:   leaveTypes[rand.Intn(len(leaveTypes))],
		StartDate:   startDate,
		EndDate:     endDate,
		IsFullDay:   true,
		Reason:      "随机生成的请假" + GenerateRandomID(4, 2),
		RequestCode: GenerateRequestCode(LeaveRequestCodePrefix, time.Now()),
		TotalDays:   int32(days),
	}
}
