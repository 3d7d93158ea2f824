package main

import (
	"fmt"
	"log"
	"time"

	"github.com/jumperlog/internal/config"
	"github.com/jumperlog/internal/db"
	"github.com/jumperlog/internal/service"
)

// 演示数据生成器：建两个批次并回填最近一周的日志
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	batches := service.NewBatchService(db.DB)
	spiderLogs := service.NewSpiderLogService(db.DB)
	dayLogs := service.NewDayLogService(db.DB)

	batchA, err := batches.Create(service.BatchInput{Name: "2026 春季孵化", SpiderCount: 12})
	if err != nil {
		log.Fatal("创建批次失败:", err)
	}

	batchB, err := batches.Create(service.BatchInput{Name: "成体留种组", SpiderCount: 4})
	if err != nil {
		log.Fatal("创建批次失败:", err)
	}

	spiders, err := batches.ListSpiders(batchA.ID)
	if err != nil {
		log.Fatal("读取个体失败:", err)
	}

	today := time.Now().In(time.Local)
	for offset := 0; offset < 7; offset++ {
		day := today.AddDate(0, 0, -offset)

		for i, spider := range spiders {
			if (i+offset)%3 == 0 {
				continue
			}
			input := service.SpiderLogInput{
				Fed:     "yes",
				Ate:     "yes",
				Watered: "no",
				Molting: "no",
				Booty:   3 + (i+offset)%2,
			}
			if _, err := spiderLogs.Upsert(spider.ID, day, input); err != nil {
				log.Fatal("写入个体日志失败:", err)
			}
		}

		if _, err := dayLogs.Upsert(day, service.DayLogInput{
			Watered: offset%2 == 0,
			Sprays:  2,
			Feeder:  "果蝇",
			Note:    "例行维护",
		}); err != nil {
			log.Fatal("写入环境日志失败:", err)
		}
	}

	fmt.Println("演示数据生成完成！")
	fmt.Printf("批次: %s (12 只), %s (4 只)\n", batchA.Name, batchB.Name)
	fmt.Println("日志: 最近 7 天的个体与环境记录")
}
