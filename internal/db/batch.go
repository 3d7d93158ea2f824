package db

import "gorm.io/gorm"

// Batch 定义了批次模型，一个批次是同期孵化、一起饲养的一组蜘蛛
// LastFedColor 记录"上次喂食"标记色，是后期增量加的列，空串表示未设置
type Batch struct {
	gorm.Model
	Name         string
	LastFedColor string
}

// Spider 是批次内的单只个体，按 1..N 编号
// BatchID + Number 采用唯一索引，个体创建后不会换批次
// Name 为可选的展示名（后加列），默认空串
type Spider struct {
	gorm.Model
	BatchID uint   `gorm:"index;index:idx_spider_batch_number,unique"`
	Batch   Batch  `gorm:"constraint:OnDelete:CASCADE"`
	Number  int    `gorm:"index:idx_spider_batch_number,unique"`
	Name    string
}
