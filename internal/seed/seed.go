package seed

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
	"github.com/wardline-dev/roster-coordinator/backend/internal/repository"
	"github.com/wardline-dev/roster-coordinator/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// 标准三班倒，每天早午夜各一班
var weekShiftDefs = []domain.ScheduleTemplateShift{
	{ShiftType: domain.ShiftTypeMorning, StartTime: "08:00:00", EndTime: "16:00:00", RequiredStaffCount: 3},
	{ShiftType: domain.ShiftTypeAfternoon, StartTime: "16:00:00", EndTime: "00:00:00", RequiredStaffCount: 2},
	{ShiftType: domain.ShiftTypeNight, StartTime: "00:00:00", EndTime: "08:00:00", RequiredStaffCount: 2},
}

// requiredHeaders 员工名单 CSV 必须包含的列
var requiredHeaders = []string{"姓名", "邮箱", "角色", "科室"}

// SeedRealData 从员工名单 CSV 导入真实员工，并为每个科室建一份标准周模板
func SeedRealData(r *repository.Repository, password string) {
	file, err := os.Open("./internal/seed/data/staff.csv")
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	headerIndex := make(map[string]int)
	for i, header := range headers {
		headerIndex[header] = i
	}
	for _, required := range requiredHeaders {
		if _, ok := headerIndex[required]; !ok {
			slog.Error("没有找到必需的列", "header", required)
			return
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("无法生成密码哈希", "error", err)
		return
	}

	// 读取数据并插入员工
	departments := make(map[string]struct{})
	cnt := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		fullName := row[headerIndex["姓名"]]
		staff := &domain.Staff{
			Username:     utils.GenerateUsernameFromChineseName(fullName),
			PasswordHash: string(passwordHash),
			FullName:     fullName,
			Email:        row[headerIndex["邮箱"]],
			Role:         domain.Role(row[headerIndex["角色"]]),
			Department:   row[headerIndex["科室"]],
		}

		if err := r.CreateStaff(staff); err != nil {
			slog.Error("无法插入员工", "full_name", fullName, "error", err)
			continue
		}

		departments[staff.Department] = struct{}{}
		cnt++
	}

	slog.Info("插入员工成功", "count", cnt)

	// 为每个科室建一份标准周模板
	for department := range departments {
		st := &domain.ScheduleTemplate{
			Name:       department + "标准周模板",
			Department: department,
			ValidFrom:  time.Now().Truncate(24 * time.Hour),
			IsActive:   true,
			Shifts:     make([]domain.ScheduleTemplateShift, 0, len(weekShiftDefs)*7),
		}

		for day := int32(1); day <= 7; day++ {
			for _, def := range weekShiftDefs {
				shift := def
				shift.DayOfWeek = day
				st.Shifts = append(st.Shifts, shift)
			}
		}

		if err := r.CreateScheduleTemplate(st); err != nil {
			slog.Error("无法插入周模板", "department", department, "error", err)
			continue
		}

		slog.Info("插入周模板成功", "department", department)
	}
}
