package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jumperlog/internal/db"
	"github.com/jumperlog/internal/view"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSpiderNotFound 在指定个体不存在时返回
	ErrSpiderNotFound = errors.New("spider not found")
	// ErrNoValidTargets 当批量写入过滤后没有任何合法目标时返回
	ErrNoValidTargets = errors.New("no valid targets in batch")
	// ErrInvalidDay 当日志日期为零值时返回
	ErrInvalidDay = errors.New("invalid log day")
)

// 评分取值范围，超出范围的输入一律截断
const (
	bootyMin = 1
	bootyMax = 5
)

// SpiderLogService 负责个体日志与标记色的写入和区间查询
// 所有按键写入都走 upsert，(spider_id, day) 永远至多一行

type SpiderLogService struct {
	db *gorm.DB
}

// SpiderLogInput 定义单日日志可提交的字段
type SpiderLogInput struct {
	Fed        string
	Ate        string
	Watered    string
	Molting    string
	MoltsCount int
	Notes      string
	Booty      int
}

// LogKey 标识一条个体日志，Day 为 2006-01-02 格式
type LogKey struct {
	SpiderID uint
	Day      string
}

// NewSpiderLogService 构造 SpiderLogService
func NewSpiderLogService(gdb *gorm.DB) *SpiderLogService {
	return &SpiderLogService{db: gdb}
}

// Upsert 写入或覆盖 (spider_id, day) 对应的日志行
// 字段先归一：fed/ate/watered/molting 收敛到 yes/no，booty 截断到 [1,5]
func (s *SpiderLogService) Upsert(spiderID uint, day time.Time, input SpiderLogInput) (*db.SpiderDayLog, error) {
	if day.IsZero() {
		return nil, ErrInvalidDay
	}

	var spider db.Spider
	if err := s.db.First(&spider, spiderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpiderNotFound
		}
		return nil, fmt.Errorf("find spider: %w", err)
	}

	record := normalizeLog(spiderID, day, input)

	if err := upsertLog(s.db, &record); err != nil {
		return nil, fmt.Errorf("upsert spider log: %w", err)
	}

	if err := s.db.Where("spider_id = ? AND day = ?", spiderID, record.Day).First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload spider log: %w", err)
	}

	return &record, nil
}

// BulkUpsert 对属于 batchID 的目标个体应用同一份日志
// 不属于该批次的 ID 会被静默过滤，返回实际写入的数量；过滤后为空则报错
func (s *SpiderLogService) BulkUpsert(batchID uint, spiderIDs []uint, day time.Time, input SpiderLogInput) (int, error) {
	if day.IsZero() {
		return 0, ErrInvalidDay
	}

	var validIDs []uint
	if len(spiderIDs) > 0 {
		if err := s.db.Model(&db.Spider{}).
			Where("batch_id = ? AND id IN ?", batchID, spiderIDs).
			Order("number ASC").
			Pluck("id", &validIDs).Error; err != nil {
			return 0, fmt.Errorf("filter bulk targets: %w", err)
		}
	}

	if len(validIDs) == 0 {
		return 0, ErrNoValidTargets
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range validIDs {
			record := normalizeLog(id, day, input)
			if err := upsertLog(tx, &record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk upsert spider logs: %w", err)
	}

	return len(validIDs), nil
}

// SetHighlight 写入或覆盖个体标记色，空串清除；不在调色板内的颜色直接拒绝
func (s *SpiderLogService) SetHighlight(spiderID uint, color string) error {
	color = strings.TrimSpace(color)
	if !view.ValidColor(color) {
		return fmt.Errorf("%w: %s", ErrInvalidColor, color)
	}

	var spider db.Spider
	if err := s.db.First(&spider, spiderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpiderNotFound
		}
		return fmt.Errorf("find spider: %w", err)
	}

	record := db.Highlight{SpiderID: spiderID, Color: color}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "spider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"color", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("upsert highlight: %w", err)
	}

	return nil
}

// HighlightsForBatch 返回批次内的标记色映射 spider_id -> color
func (s *SpiderLogService) HighlightsForBatch(batchID uint) (map[uint]string, error) {
	var highlights []db.Highlight
	if err := s.db.
		Where("spider_id IN (?)", s.spiderIDsOf(batchID)).
		Find(&highlights).Error; err != nil {
		return nil, fmt.Errorf("list highlights: %w", err)
	}

	result := make(map[uint]string, len(highlights))
	for _, h := range highlights {
		result[h.SpiderID] = h.Color
	}
	return result, nil
}

// LogsForDay 返回批次内某一天的日志映射 spider_id -> 日志
func (s *SpiderLogService) LogsForDay(batchID uint, day time.Time) (map[uint]db.SpiderDayLog, error) {
	var logs []db.SpiderDayLog
	if err := s.db.
		Where("day = ?", normalizeToDate(day)).
		Where("spider_id IN (?)", s.spiderIDsOf(batchID)).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list day logs: %w", err)
	}

	result := make(map[uint]db.SpiderDayLog, len(logs))
	for _, logRow := range logs {
		result[logRow.SpiderID] = logRow
	}
	return result, nil
}

// LogsBetween 返回指定个体在区间内的日志，按 (spider_id, day) 建键
func (s *SpiderLogService) LogsBetween(spiderIDs []uint, start, end time.Time) (map[LogKey]db.SpiderDayLog, error) {
	result := make(map[LogKey]db.SpiderDayLog)
	if len(spiderIDs) == 0 {
		return result, nil
	}

	var logs []db.SpiderDayLog
	if err := s.db.
		Where("spider_id IN ?", spiderIDs).
		Where("day BETWEEN ? AND ?", normalizeToDate(start), normalizeToDate(end)).
		Order("day ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list spider logs: %w", err)
	}

	for _, logRow := range logs {
		key := LogKey{SpiderID: logRow.SpiderID, Day: logRow.Day.Format("2006-01-02")}
		result[key] = logRow
	}
	return result, nil
}

// ActiveDays 返回批次在区间内有任意日志的日期集合，键为 2006-01-02
func (s *SpiderLogService) ActiveDays(batchID uint, start, end time.Time) (map[string]bool, error) {
	var days []time.Time
	if err := s.db.Model(&db.SpiderDayLog{}).
		Where("spider_id IN (?)", s.spiderIDsOf(batchID)).
		Where("day BETWEEN ? AND ?", normalizeToDate(start), normalizeToDate(end)).
		Distinct("day").
		Order("day ASC").
		Pluck("day", &days).Error; err != nil {
		return nil, fmt.Errorf("list active days: %w", err)
	}

	result := make(map[string]bool, len(days))
	for _, day := range days {
		result[day.Format("2006-01-02")] = true
	}
	return result, nil
}

// spiderIDsOf 生成批次个体 ID 的子查询，由 gorm 参数化绑定
func (s *SpiderLogService) spiderIDsOf(batchID uint) *gorm.DB {
	return s.db.Model(&db.Spider{}).Select("id").Where("batch_id = ?", batchID)
}

func normalizeLog(spiderID uint, day time.Time, input SpiderLogInput) db.SpiderDayLog {
	return db.SpiderDayLog{
		SpiderID:   spiderID,
		Day:        normalizeToDate(day),
		Fed:        coerceYesNo(input.Fed),
		Ate:        coerceYesNo(input.Ate),
		Watered:    coerceYesNo(input.Watered),
		Molting:    coerceYesNo(input.Molting),
		MoltsCount: max(0, input.MoltsCount),
		Notes:      input.Notes,
		Booty:      clampBooty(input.Booty),
	}
}

func upsertLog(tx *gorm.DB, record *db.SpiderDayLog) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "spider_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fed", "ate", "watered", "molting", "molts_count", "notes", "booty", "updated_at",
		}),
	}).Create(record).Error
}

func coerceYesNo(value string) string {
	if strings.TrimSpace(strings.ToLower(value)) == "yes" {
		return "yes"
	}
	return "no"
}

func clampBooty(value int) int {
	if value < bootyMin {
		return bootyMin
	}
	if value > bootyMax {
		return bootyMax
	}
	return value
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
