package scheduler

import (
	"math"
	"math/rand"
	"slices"
)

// randomInitChromosome 随机初始化一个染色体
// 初始方案严格满足一人一天一班，缺员的槽位留空
func (s *Scheduler) randomInitChromosome() *Chromosome {
	var genes []*Gene

	usedByDay := make(map[int32]map[int64]struct{})

	for i, slot := range s.slots {
		if _, exists := usedByDay[slot.DayOfWeek]; !exists {
			usedByDay[slot.DayOfWeek] = make(map[int64]struct{})
		}

		// 筛掉当天已被指派的候选
		candidateIDs := []int64{}
		for _, staffID := range s.candidates[i] {
			if _, used := usedByDay[slot.DayOfWeek][staffID]; !used {
				candidateIDs = append(candidateIDs, staffID)
			}
		}

		// 随机选出该槽位的员工
		chosenNum := min(int(slot.RequiredStaffCount), len(candidateIDs))
		rand.Shuffle(len(candidateIDs), func(i, j int) {
			candidateIDs[i], candidateIDs[j] = candidateIDs[j], candidateIDs[i]
		})
		chosenIDs := make([]int64, chosenNum)
		copy(chosenIDs, candidateIDs[:chosenNum])

		for _, staffID := range chosenIDs {
			usedByDay[slot.DayOfWeek][staffID] = struct{}{}
		}

		genes = append(genes, &Gene{
			dayOfWeek:   slot.DayOfWeek,
			shiftType:   slot.ShiftType,
			staffIDs:    chosenIDs,
			requiredNum: slot.RequiredStaffCount,
			workHours:   shiftHours(slot.StartTime, slot.EndTime),
		})
	}

	return &Chromosome{
		genes: genes,
	}
}

/**
 * 计算染色体的适应度
 * fitness = - conflictPenalty - understaffPenalty - idlePenalty - FairnessWeight * fairnessPenalty
 * 其中:
 * 		1. conflictPenalty 为冲突惩罚（交叉可能产生同一员工同一天多个班次的方案，权重最大）
 * 		2. understaffPenalty 为缺员惩罚（槽位人数少于模板要求）
 * 		3. idlePenalty 为闲置惩罚（用于确保每个员工都尽可能排上班）
 * 		4. fairnessPenalty 为公平性惩罚（各员工工时的方差，由 FairnessWeight 加权）
 */
func (s *Scheduler) calcFitness(ch *Chromosome) {
	staffHours := make(map[int64]float64)
	for _, staff := range s.staffs {
		staffHours[staff.ID] = 0
	}

	assignedByDay := make(map[int32]map[int64]int)

	understaffPenalty := 0.0
	for _, gene := range ch.genes {
		understaffPenalty += float64(int(gene.requiredNum) - len(gene.staffIDs))

		if _, exists := assignedByDay[gene.dayOfWeek]; !exists {
			assignedByDay[gene.dayOfWeek] = make(map[int64]int)
		}
		for _, staffID := range gene.staffIDs {
			staffHours[staffID] += gene.workHours
			assignedByDay[gene.dayOfWeek][staffID]++
		}
	}

	// 计算 conflictPenalty
	conflictPenalty := 0.0
	for _, dayAssignments := range assignedByDay {
		for _, cnt := range dayAssignments {
			if cnt > 1 {
				conflictPenalty += float64(cnt - 1)
			}
		}
	}

	// 计算 idlePenalty
	idlePenalty := 0.0
	for _, hours := range staffHours {
		if hours == 0 {
			idlePenalty += 1
		}
	}

	// 计算 fairnessPenalty（即方差）
	variance := 0.0
	avgHours := 0.0

	for _, hours := range staffHours {
		avgHours += hours
	}
	avgHours /= float64(len(staffHours))

	for _, hours := range staffHours {
		variance += math.Pow(hours-avgHours, 2)
	}
	variance /= float64(len(staffHours))

	// 计算 fitness 并赋值给染色体
	fitness := -10*conflictPenalty - understaffPenalty - idlePenalty - s.parameters.FairnessWeight*variance
	ch.fitness = fitness
}

// 使用锦标赛来进行选择，适应度恒为负数，不适合轮盘赌
func (s *Scheduler) selectByTournament(pop []*Chromosome) *Chromosome {
	best := pop[rand.Intn(len(pop))]
	for i := 0; i < 2; i++ {
		contender := pop[rand.Intn(len(pop))]
		if contender.fitness > best.fitness {
			best = contender
		}
	}

	// 深拷贝，防止同一个染色体被多次选中后互相干扰
	clone := &Chromosome{
		genes:   make([]*Gene, len(best.genes)),
		fitness: best.fitness,
	}
	for i, gene := range best.genes {
		clone.genes[i] = &Gene{
			dayOfWeek:   gene.dayOfWeek,
			shiftType:   gene.shiftType,
			staffIDs:    make([]int64, len(gene.staffIDs)),
			requiredNum: gene.requiredNum,
			workHours:   gene.workHours,
		}
		copy(clone.genes[i].staffIDs, gene.staffIDs)
	}
	return clone
}

// 单点交叉
func (s *Scheduler) singlePointCrossover(ch1 *Chromosome, ch2 *Chromosome) {
	length1 := len(ch1.genes)
	length2 := len(ch2.genes)

	if length1 != length2 {
		// 按理来说两个染色体的长度应该能保证是相等的
		// 这里只是以防万一
		return
	}

	length := length1

	// 随机选择一个位置
	point := rand.Intn(length)

	// 交换两个染色体在 point 位置之后的基因
	for i := point; i < length; i++ {
		ch1.genes[i], ch2.genes[i] = ch2.genes[i], ch1.genes[i]
	}
}

// 变异
// 槽位中的每个员工都有一定概率被替换为当天未被指派的其他候选
func (s *Scheduler) mutate(ch *Chromosome) {
	for i := range ch.genes {
		gene := ch.genes[i]

		for j := range gene.staffIDs {
			if rand.Float64() > s.parameters.MutationRate {
				continue
			}

			candidateIDs := []int64{}
			for _, staffID := range s.candidates[i] {
				if slices.Contains(gene.staffIDs, staffID) {
					// 已经在这个槽位中的员工不要放入候选
					continue
				}
				if s.assignedOnDay(ch, gene.dayOfWeek, staffID) {
					// 当天已有别的槽位的员工也不要放入候选
					continue
				}

				candidateIDs = append(candidateIDs, staffID)
			}

			if len(candidateIDs) > 0 {
				gene.staffIDs[j] = candidateIDs[rand.Intn(len(candidateIDs))]
			}
		}
	}
}

func (s *Scheduler) assignedOnDay(ch *Chromosome, dayOfWeek int32, staffID int64) bool {
	for _, gene := range ch.genes {
		if gene.dayOfWeek != dayOfWeek {
			continue
		}
		if slices.Contains(gene.staffIDs, staffID) {
			return true
		}
	}
	return false
}
