package service

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth 当年月参数超出可显示范围时返回
var ErrInvalidMonth = errors.New("invalid year or month")

// MonthGrid 是日历页的完整月视图
// Weeks 是若干个整周（周日开头），首尾用相邻月份的日期补齐
// First/Last 给区间查询用：First 是 1 号当周的周日，Last 是月末当周的周六
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks [][]time.Time
	First time.Time
	Last  time.Time
}

// BuildMonthGrid 计算指定年月的日历网格
func BuildMonthGrid(year, month int) (*MonthGrid, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidMonth, year, month)
	}

	firstOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	// 周日开头：往前补到周日，往后补到周六
	gridStart := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))
	gridEnd := lastOfMonth.AddDate(0, 0, int(time.Saturday-lastOfMonth.Weekday()))

	var weeks [][]time.Time
	for cursor := gridStart; !cursor.After(gridEnd); cursor = cursor.AddDate(0, 0, 7) {
		week := make([]time.Time, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, cursor.AddDate(0, 0, i))
		}
		weeks = append(weeks, week)
	}

	return &MonthGrid{
		Year:  year,
		Month: time.Month(month),
		Weeks: weeks,
		First: gridStart,
		Last:  gridEnd,
	}, nil
}

// PrevMonth 返回上一个月，1 月回绕到上一年 12 月
func PrevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth 返回下一个月，12 月回绕到下一年 1 月
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}
