package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jumperlog/internal/db"
	"github.com/jumperlog/internal/view"
	"gorm.io/gorm"
)

var (
	// ErrBatchNotFound 在指定批次不存在时返回
	ErrBatchNotFound = errors.New("batch not found")
	// ErrBatchInvalidInput 当批次名称为空或数量非正时返回
	ErrBatchInvalidInput = errors.New("invalid batch input")
	// ErrInvalidColor 当颜色不在固定调色板内时返回
	ErrInvalidColor = errors.New("color not in palette")
)

// BatchService 负责批次与个体的增删查
// 创建时按 1..N 批量生成个体，删除时级联清掉日志和标记色，保证无孤儿行

type BatchService struct {
	db *gorm.DB
}

// BatchInput 定义创建批次所需字段
type BatchInput struct {
	Name        string
	SpiderCount int
}

// BatchSummary 是列表页用的批次视图，附带个体数量
type BatchSummary struct {
	db.Batch
	SpiderCount int64
}

// NewBatchService 构造 BatchService
func NewBatchService(gdb *gorm.DB) *BatchService {
	return &BatchService{db: gdb}
}

// Create 新建批次并在同一事务内生成编号 1..N 的个体
func (s *BatchService) Create(input BatchInput) (*db.Batch, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBatchInvalidInput)
	}
	if input.SpiderCount < 1 {
		return nil, fmt.Errorf("%w: spider count must be positive", ErrBatchInvalidInput)
	}

	batch := db.Batch{Name: name}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}

		spiders := make([]db.Spider, 0, input.SpiderCount)
		for i := 1; i <= input.SpiderCount; i++ {
			spiders = append(spiders, db.Spider{BatchID: batch.ID, Number: i})
		}

		return tx.Create(&spiders).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	return &batch, nil
}

// Get 根据 ID 获取批次
func (s *BatchService) Get(id uint) (*db.Batch, error) {
	var batch db.Batch
	if err := s.db.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &batch, nil
}

// List 返回全部批次（新建在前），附带各自的个体数量
func (s *BatchService) List() ([]BatchSummary, error) {
	var batches []db.Batch
	if err := s.db.Order("id DESC").Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}

	var rows []struct {
		BatchID uint
		Count   int64
	}
	if err := s.db.Model(&db.Spider{}).
		Select("batch_id, COUNT(*) AS count").
		Group("batch_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("count spiders: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.BatchID] = row.Count
	}

	summaries := make([]BatchSummary, 0, len(batches))
	for _, batch := range batches {
		summaries = append(summaries, BatchSummary{Batch: batch, SpiderCount: counts[batch.ID]})
	}

	return summaries, nil
}

// Latest 返回最近创建的批次，没有任何批次时返回 ErrBatchNotFound
func (s *BatchService) Latest() (*db.Batch, error) {
	var batch db.Batch
	if err := s.db.Order("id DESC").First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("latest batch: %w", err)
	}
	return &batch, nil
}

// Delete 删除批次及其全部个体、日志和标记色；删除不存在的 ID 是空操作
func (s *BatchService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var spiderIDs []uint
		if err := tx.Model(&db.Spider{}).
			Where("batch_id = ?", id).
			Pluck("id", &spiderIDs).Error; err != nil {
			return err
		}

		if len(spiderIDs) > 0 {
			if err := tx.Where("spider_id IN ?", spiderIDs).Delete(&db.SpiderDayLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("spider_id IN ?", spiderIDs).Delete(&db.Highlight{}).Error; err != nil {
				return err
			}
			if err := tx.Where("batch_id = ?", id).Delete(&db.Spider{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&db.Batch{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}

// GetSpider 根据 ID 获取单只个体
func (s *BatchService) GetSpider(id uint) (*db.Spider, error) {
	var spider db.Spider
	if err := s.db.First(&spider, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpiderNotFound
		}
		return nil, fmt.Errorf("get spider: %w", err)
	}
	return &spider, nil
}

// ListSpiders 返回批次内的个体，按编号升序
func (s *BatchService) ListSpiders(batchID uint) ([]db.Spider, error) {
	var spiders []db.Spider
	if err := s.db.Where("batch_id = ?", batchID).
		Order("number ASC").
		Find(&spiders).Error; err != nil {
		return nil, fmt.Errorf("list spiders: %w", err)
	}
	return spiders, nil
}

// SetLastFedColor 更新批次的"上次喂食"标记色，空串表示清除
func (s *BatchService) SetLastFedColor(batchID uint, color string) error {
	color = strings.TrimSpace(color)
	if !view.ValidColor(color) {
		return fmt.Errorf("%w: %s", ErrInvalidColor, color)
	}

	var batch db.Batch
	if err := s.db.First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBatchNotFound
		}
		return fmt.Errorf("find batch: %w", err)
	}

	if err := s.db.Model(&batch).Update("last_fed_color", color).Error; err != nil {
		return fmt.Errorf("set last fed color: %w", err)
	}
	return nil
}
