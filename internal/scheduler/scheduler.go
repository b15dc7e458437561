package scheduler

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/wardline-dev/roster-coordinator/backend/internal/domain"
)

type Scheduler struct {
	parameters *Parameters
	staffs     []*domain.Staff
	slots      []*domain.ScheduleTemplateShift
	candidates [][]int64 // 与 slots 对齐，每个槽位按角色要求筛出的候选员工
}

func New(parameters *Parameters, staffs []*domain.Staff, template *domain.ScheduleTemplate) (*Scheduler, error) {
	// 精英保留直接对排序后的种群做切片，越界会在迭代中崩溃
	if parameters.EliteCount > parameters.PopulationSize {
		return nil, errors.New("精英数量不能超过种群规模")
	}

	s := &Scheduler{
		parameters: parameters,
		staffs:     make([]*domain.Staff, 0, len(staffs)),
		slots:      make([]*domain.ScheduleTemplateShift, 0, len(template.Shifts)),
		candidates: make([][]int64, 0, len(template.Shifts)),
	}

	for _, staff := range staffs {
		if staff.IsActive {
			s.staffs = append(s.staffs, staff)
		}
	}
	if len(s.staffs) == 0 {
		return nil, errors.New("没有可参与排班的在职员工")
	}

	for i := range template.Shifts {
		slot := &template.Shifts[i]

		candidateIDs := []int64{}
		for _, staff := range s.staffs {
			if matchesRequiredRoles(staff, slot.RequiredRoles) {
				candidateIDs = append(candidateIDs, staff.ID)
			}
		}

		s.slots = append(s.slots, slot)
		s.candidates = append(s.candidates, candidateIDs)
	}
	if len(s.slots) == 0 {
		return nil, errors.New("模板中没有班次定义")
	}

	return s, nil
}

func (s *Scheduler) Schedule() ([]Assignment, error) {
	// 生成初始种群
	pop := make([]*Chromosome, s.parameters.PopulationSize)
	for i := 0; i < int(s.parameters.PopulationSize); i++ {
		pop[i] = s.randomInitChromosome()
		s.calcFitness(pop[i])
	}

	// 迭代
	bestChromosomeEver := &Chromosome{
		genes:   nil,
		fitness: -math.MaxFloat64,
	}

	for gen := 0; gen < int(s.parameters.MaxGenerations); gen++ {
		// 找到本代最佳样本
		genBestFit := pop[0].fitness
		genBestIndex := 0

		for i := 1; i < int(s.parameters.PopulationSize); i++ {
			if pop[i].fitness > genBestFit {
				genBestFit = pop[i].fitness
				genBestIndex = i
			}
		}

		if genBestFit > bestChromosomeEver.fitness {
			bestChromosomeEver.fitness = genBestFit
			// 这里需要使用深拷贝，防止后续繁殖的过程中导致指向的基因被修改
			bestChromosomeEver.genes = make([]*Gene, len(pop[genBestIndex].genes))
			for i := 0; i < len(pop[genBestIndex].genes); i++ {
				bestChromosomeEver.genes[i] = &Gene{
					dayOfWeek:   pop[genBestIndex].genes[i].dayOfWeek,
					shiftType:   pop[genBestIndex].genes[i].shiftType,
					staffIDs:    make([]int64, len(pop[genBestIndex].genes[i].staffIDs)),
					requiredNum: pop[genBestIndex].genes[i].requiredNum,
					workHours:   pop[genBestIndex].genes[i].workHours,
				}
				copy(bestChromosomeEver.genes[i].staffIDs, pop[genBestIndex].genes[i].staffIDs)
			}
		}

		// 繁殖
		newPop := make([]*Chromosome, 0, s.parameters.PopulationSize)

		// 保留精英
		sort.Slice(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})
		newPop = append(newPop, pop[:int(s.parameters.EliteCount)]...)

		// 在剩余的染色体中进行交叉和变异
		for len(newPop) < int(s.parameters.PopulationSize) {
			// 选择两个父本
			p1 := s.selectByTournament(pop)
			p2 := s.selectByTournament(pop)

			if rand.Float64() < s.parameters.CrossoverRate {
				s.singlePointCrossover(p1, p2)
			}

			s.mutate(p1)
			s.mutate(p2)

			newPop = append(newPop, p1)

			if len(newPop) < int(s.parameters.PopulationSize) {
				newPop = append(newPop, p2)
			}
		}

		for i := 0; i < int(s.parameters.PopulationSize); i++ {
			pop[i] = newPop[i]
			s.calcFitness(pop[i])
		}
	}

	// 整理结果，交叉可能产生同一员工同一天多个槽位的方案，这里只保留第一个
	assignments := make([]Assignment, 0)
	usedByDay := make(map[int32]map[int64]struct{})

	for _, gene := range bestChromosomeEver.genes {
		if _, exists := usedByDay[gene.dayOfWeek]; !exists {
			usedByDay[gene.dayOfWeek] = make(map[int64]struct{})
		}

		for _, staffID := range gene.staffIDs {
			if _, used := usedByDay[gene.dayOfWeek][staffID]; used {
				continue
			}
			usedByDay[gene.dayOfWeek][staffID] = struct{}{}

			assignments = append(assignments, Assignment{
				StaffID:   staffID,
				DayOfWeek: gene.dayOfWeek,
				ShiftType: gene.shiftType,
			})
		}
	}

	if len(assignments) == 0 {
		return nil, errors.New("没有找到可行的指派方案")
	}

	return assignments, nil
}
