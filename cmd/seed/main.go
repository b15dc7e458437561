package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/wardline-dev/roster-coordinator/backend/internal/config"
	"github.com/wardline-dev/roster-coordinator/backend/internal/repository"
	"github.com/wardline-dev/roster-coordinator/backend/internal/seed"
	"github.com/wardline-dev/roster-coordinator/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机排班模板, 3: 插入随机班次, 4: 插入随机请假申请, 5: 插入真实数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				staff, err := utils.GenerateRandomStaff(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机员工", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateStaff(staff); err != nil {
					slog.Error("无法插入员工", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入员工成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的排班模板数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				st := utils.GenerateRandomScheduleTemplate()
				if err := repo.CreateScheduleTemplate(st); err != nil {
					slog.Error("无法插入排班模板", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入排班模板成功", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的天数")
			return
		}

		// 为每个在职员工生成未来 n 天的随机班次，撞上已有班次的直接跳过
		staffs, err := repo.GetAllStaff()
		if err != nil {
			slog.Error("无法获取员工列表", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		today := time.Now().Truncate(24 * time.Hour)
		for _, staff := range staffs {
			if !staff.IsActive {
				continue
			}

			for day := 0; day < n; day++ {
				shift := utils.GenerateRandomShift(staff.ID, today.AddDate(0, 0, day), staff.Department, staff.ID)
				if err := repo.CreateShift(shift); err != nil {
					continue
				}
				cnt++
			}
		}

		slog.Info("插入班次成功", slog.Int("count", cnt))
	case 4:
		if n <= 0 {
			slog.Error("请输入合法的请假申请数量")
			return
		}

		staffs, err := repo.GetAllStaff()
		if err != nil {
			slog.Error("无法获取员工列表", slog.String("error", err.Error()))
			return
		}
		if len(staffs) == 0 {
			slog.Error("数据库中没有员工，请先插入员工")
			return
		}

		cnt := 0
		today := time.Now().Truncate(24 * time.Hour)
		for i := 0; i < n; i++ {
			staff := staffs[rand.Intn(len(staffs))]
			startDate := today.AddDate(0, 0, rand.Intn(30)+1)

			lr := utils.GenerateRandomLeaveRequest(staff.ID, startDate)
			if err := repo.CreateLeaveRequest(lr); err != nil {
				slog.Error("无法插入请假申请", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入请假申请成功", slog.Int("count", cnt))
	case 5:
		seed.SeedRealData(repo, cfg.Seed.User.Password)
	default:
		slog.Error("指定的操作非法")
	}
}
