package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jumperlog/internal/db"
	"github.com/jumperlog/internal/service"
)

// ShowDay 渲染某一天的环境记录编辑页；没有记录时给一张空表单
func (a *API) ShowDay(c *gin.Context) {
	day, err := parseDayParam(c, "day")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	record, err := a.dayLogs.Get(day)
	if err != nil && !errors.Is(err, service.ErrDayLogNotFound) {
		respondError(c, http.StatusInternalServerError, "加载记录失败")
		return
	}
	if record == nil {
		record = &db.DayLog{Day: day}
	}

	var noteHTML template.HTML
	if record.Note != "" {
		if rendered, err := service.RenderNoteHTML(record.Note); err == nil {
			noteHTML = rendered
		}
	}

	c.HTML(http.StatusOK, "day.html", gin.H{
		"title":    day.Format(dateFormat),
		"day":      day.Format(dateFormat),
		"log":      record,
		"noteHTML": noteHTML,
	})
}

// SaveDay 保存某一天的环境记录，保存后跳回当月日历
func (a *API) SaveDay(c *gin.Context) {
	day, err := parseDayParam(c, "day")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	sprays, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("sprays", "0")))
	if err != nil {
		sprays = 0
	}

	input := service.DayLogInput{
		Watered: c.PostForm("watered") != "",
		Sprays:  sprays,
		Feeder:  c.PostForm("feeder"),
		Note:    c.PostForm("note"),
	}

	if _, err := a.dayLogs.Upsert(day, input); err != nil {
		respondError(c, http.StatusInternalServerError, "保存记录失败")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/calendar/%d/%d", day.Year(), int(day.Month())))
}
