package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jumperlog/internal/db"
	"github.com/jumperlog/internal/service"
)

// ShowCalendar 渲染月历：整周网格、环境记录、当前批次的个体日志和有数据标记
// 不带年月段时显示当前月份
func (a *API) ShowCalendar(c *gin.Context) {
	now := time.Now().In(time.Local)
	year, month := now.Year(), int(now.Month())

	var err error
	if c.Param("year") != "" {
		year, err = strconv.Atoi(c.Param("year"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的年份")
			return
		}
	}
	if c.Param("month") != "" {
		month, err = strconv.Atoi(c.Param("month"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的月份")
			return
		}
	}

	grid, err := service.BuildMonthGrid(year, month)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的年月")
		return
	}

	dayMap, err := a.dayLogs.Between(grid.First, grid.Last)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载环境记录失败")
		return
	}

	// 日历附带"最近查看批次"的个体日志；会话值仅是提示，没有就取最新批次
	session := sessions.Default(c)
	batchID, ok := session.Get(sessionLastBatch).(uint)
	if ok {
		if _, err := a.batches.Get(batchID); err != nil {
			ok = false
		}
	}
	if !ok {
		if batch, err := a.batches.Latest(); err == nil {
			batchID = batch.ID
			ok = true
			session.Set(sessionLastBatch, batchID)
			session.Save()
		}
	}

	var spiders []db.Spider
	slogMap := make(map[service.LogKey]db.SpiderDayLog)
	activeDays := make(map[string]bool)

	if ok {
		spiders, err = a.batches.ListSpiders(batchID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "加载个体列表失败")
			return
		}

		spiderIDs := make([]uint, 0, len(spiders))
		for _, spider := range spiders {
			spiderIDs = append(spiderIDs, spider.ID)
		}

		slogMap, err = a.spiderLogs.LogsBetween(spiderIDs, grid.First, grid.Last)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "加载个体日志失败")
			return
		}

		activeDays, err = a.spiderLogs.ActiveDays(batchID, grid.First, grid.Last)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "加载活动标记失败")
			return
		}
	}

	prevYear, prevMonth := service.PrevMonth(year, month)
	nextYear, nextMonth := service.NextMonth(year, month)

	c.HTML(http.StatusOK, "calendar.html", gin.H{
		"title":      "日历",
		"year":       year,
		"month":      month,
		"monthName":  grid.Month.String(),
		"weeks":      grid.Weeks,
		"today":      now.Format(dateFormat),
		"dayMap":     dayMap,
		"spiders":    spiders,
		"slogMap":    slogMap,
		"activeDays": activeDays,
		"prevYear":   prevYear,
		"prevMonth":  prevMonth,
		"nextYear":   nextYear,
		"nextMonth":  nextMonth,
	})
}

// GetDayPopup 返回日历弹窗用的单日 JSON 数据
func (a *API) GetDayPopup(c *gin.Context) {
	day, err := parseDayParam(c, "day")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	record, err := a.dayLogs.Get(day)
	if err != nil {
		if errors.Is(err, service.ErrDayLogNotFound) {
			c.JSON(http.StatusOK, gin.H{"day": day.Format(dateFormat), "has_data": false})
			return
		}
		respondError(c, http.StatusInternalServerError, "加载记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"day":      record.Day.Format(dateFormat),
		"has_data": true,
		"watered":  record.Watered,
		"sprays":   record.Sprays,
		"feeder":   record.Feeder,
		"note":     record.Note,
	})
}
