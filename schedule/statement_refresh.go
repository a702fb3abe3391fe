package main

import (
	"os"
	"time"

	"investcontrol/internal/handlers/business"
	"investcontrol/internal/models"
	dbconfig "investcontrol/pkg/config"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

// RefreshMessage asks the worker to rebuild one monthly rollup
type RefreshMessage struct {
	ProjectID uint   `json:"project_id"`
	Month     string `json:"month"`
}

// PublishStatementRefreshes 为所有活跃项目发布月度报表刷新任务
func PublishStatementRefreshes() error {
	logger.Info("> 开始发布月度报表刷新任务")

	// 1. 获取所有活跃项目
	var projects []models.Project
	if err := dbconfig.DB.Where("status = ?", "active").Find(&projects).Error; err != nil {
		logger.Errorf("> 查询项目失败: %v", err)
		return err
	}

	logger.Infof("> 共找到 %d 个活跃项目", len(projects))

	month := business.PeriodOf(time.Now())

	// 2. 逐个项目发布刷新消息，RabbitMQ 不可用时直接在本进程内重建
	for _, project := range projects {
		msg := RefreshMessage{ProjectID: project.ID, Month: month}

		if dbconfig.RabbitMQ != nil {
			if err := dbconfig.PublishMessage(dbconfig.StatementRefreshQueue, msg); err != nil {
				logger.Errorf("> 项目 %d 发布刷新消息失败: %v", project.ID, err)
			} else {
				continue
			}
		}

		if _, err := business.BuildStatement(dbconfig.DB, project.ID, month); err != nil {
			logger.Errorf("> 项目 %d 重建报表失败: %v", project.ID, err)
			continue
		}
	}

	logger.Info("> 月度报表刷新任务发布完成")
	return nil
}

func main() {
	// 配置日志输出到文件
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/statement_refresh.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.Warn("无法打开日志文件，日志将输出到标准输出")
	}

	// 配置日志格式
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)
	logger.Info("> 开始初始化程序...")

	dbconfig.LoadEnv()

	// 初始化数据库连接
	dbconfig.InitDB()
	logger.Info("> 数据库连接初始化完成")

	if os.Getenv("RABBITMQ_HOST") != "" {
		dbconfig.InitRabbitMQ()
	}

	// 创建定时任务
	c := cron.New(cron.WithSeconds())

	// 每天凌晨1点执行一次，保证当月报表跟上前一天的流水
	_, err = c.AddFunc("0 0 1 * * *", func() {
		if err := PublishStatementRefreshes(); err != nil {
			logger.Errorf("> 发布月度报表刷新任务失败: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> 添加定时任务失败: %v", err)
	}

	logger.Info("> 定时任务已启动，每天执行一次")

	// 启动定时任务
	c.Start()

	// 保持程序运行
	select {}
}
