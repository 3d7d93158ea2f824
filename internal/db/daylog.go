package db

import (
	"time"

	"gorm.io/gorm"
)

// DayLog 记录整个饲养环境某一天的操作（与具体批次/个体无关）
// Day 唯一，重复保存同一天走 upsert 覆盖
type DayLog struct {
	gorm.Model
	Day     time.Time `gorm:"uniqueIndex"`
	Watered bool
	Sprays  int
	Feeder  string
	Note    string
}
