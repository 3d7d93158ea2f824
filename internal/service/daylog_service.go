package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jumperlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDayLogNotFound 在指定日期没有环境记录时返回
var ErrDayLogNotFound = errors.New("day log not found")

// DayLogService 负责环境日志（按天、与批次无关）的读写

type DayLogService struct {
	db *gorm.DB
}

// DayLogInput 定义某一天可提交的环境字段
type DayLogInput struct {
	Watered bool
	Sprays  int
	Feeder  string
	Note    string
}

// NewDayLogService 构造 DayLogService
func NewDayLogService(gdb *gorm.DB) *DayLogService {
	return &DayLogService{db: gdb}
}

// Upsert 写入或覆盖某一天的环境记录
func (s *DayLogService) Upsert(day time.Time, input DayLogInput) (*db.DayLog, error) {
	if day.IsZero() {
		return nil, ErrInvalidDay
	}

	record := db.DayLog{
		Day:     normalizeToDate(day),
		Watered: input.Watered,
		Sprays:  max(0, input.Sprays),
		Feeder:  strings.TrimSpace(input.Feeder),
		Note:    input.Note,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"watered", "sprays", "feeder", "note", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert day log: %w", err)
	}

	if err := s.db.Where("day = ?", record.Day).First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload day log: %w", err)
	}

	return &record, nil
}

// Get 返回某一天的环境记录
func (s *DayLogService) Get(day time.Time) (*db.DayLog, error) {
	var record db.DayLog
	if err := s.db.Where("day = ?", normalizeToDate(day)).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayLogNotFound
		}
		return nil, fmt.Errorf("get day log: %w", err)
	}
	return &record, nil
}

// Between 返回区间内的环境记录，按 2006-01-02 建键
func (s *DayLogService) Between(start, end time.Time) (map[string]db.DayLog, error) {
	var logs []db.DayLog
	if err := s.db.
		Where("day BETWEEN ? AND ?", normalizeToDate(start), normalizeToDate(end)).
		Order("day ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list day logs: %w", err)
	}

	result := make(map[string]db.DayLog, len(logs))
	for _, logRow := range logs {
		result[logRow.Day.Format("2006-01-02")] = logRow
	}
	return result, nil
}
