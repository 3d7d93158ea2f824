package db

import (
	"time"

	"gorm.io/gorm"
)

// SpiderDayLog 记录单只蜘蛛某一天的饲养情况
// SpiderID + Day 采用唯一索引，保证每只每天至多一行，重复提交走 upsert 覆盖
// Fed/Ate/Watered/Molting 只取 yes/no；Booty 是 1-5 的腹部状态评分，默认 3
type SpiderDayLog struct {
	gorm.Model
	SpiderID   uint      `gorm:"index;index:idx_spider_log_unique,unique"`
	Spider     Spider    `gorm:"constraint:OnDelete:CASCADE"`
	Day        time.Time `gorm:"index:idx_spider_log_unique,unique"`
	Fed        string
	Ate        string
	Watered    string
	Molting    string
	MoltsCount int
	Notes      string
	Booty      int
}

// Highlight 是挂在单只蜘蛛上的标记色，与日期无关
// 每只至多一条，颜色取固定调色板成员，空串表示清除
type Highlight struct {
	gorm.Model
	SpiderID uint   `gorm:"uniqueIndex"`
	Spider   Spider `gorm:"constraint:OnDelete:CASCADE"`
	Color    string
}
