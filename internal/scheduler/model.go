package scheduler

import "github.com/wardline-dev/roster-coordinator/backend/internal/domain"

// Gene: 表示对某个 (dayOfWeek, shiftType) 槽位的人员指派
type Gene struct {
	dayOfWeek   int32
	shiftType   domain.ShiftType
	staffIDs    []int64 // 指派到该槽位的员工，少于 requiredNum 表示缺员
	requiredNum int32
	workHours   float64
}

// Chromosome: 一整周的指派方案
type Chromosome struct {
	genes   []*Gene
	fitness float64
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 最大迭代次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	EliteCount     int32   // 精英数量
	FairnessWeight float64 // 公平性权重
}

// Assignment 是算法的输出，排班员确认后可直接用于模板套用
type Assignment struct {
	StaffID   int64            `json:"staffID"`
	DayOfWeek int32            `json:"dayOfWeek"`
	ShiftType domain.ShiftType `json:"shiftType"`
}
