package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jumperlog/internal/service"
)

// 表单缺省时的腹部评分；超界输入由 service 截断到 [1,5]
const defaultBooty = 3

type bulkLogPayload struct {
	SpiderIDs  []uint `json:"spider_ids"`
	Fed        string `json:"fed"`
	Ate        string `json:"ate"`
	Watered    string `json:"watered"`
	Molting    string `json:"molting"`
	MoltsCount int    `json:"molts_count"`
	Notes      string `json:"notes"`
	// 指针用于区分"没传"（默认 3）和显式传 0（由 service 截断到 1）
	Booty *int `json:"booty"`
}

// SaveSpiderLog 保存单只个体某一天的日志，保存后跳回批次视图或日历
func (a *API) SaveSpiderLog(c *gin.Context) {
	spiderID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的个体ID")
		return
	}

	day, err := parseDayParam(c, "day")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	input := spiderLogInputFromForm(c)

	if _, err := a.spiderLogs.Upsert(spiderID, day, input); err != nil {
		if errors.Is(err, service.ErrSpiderNotFound) {
			respondError(c, http.StatusNotFound, "个体不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存日志失败")
		return
	}

	if c.PostForm("back") == "calendar" {
		c.Redirect(http.StatusFound, fmt.Sprintf("/calendar/%d/%d", day.Year(), int(day.Month())))
		return
	}

	spider, err := a.batches.GetSpider(spiderID)
	if err != nil {
		c.Redirect(http.StatusFound, "/today")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/batches/%d/day/%s", spider.BatchID, day.Format(dateFormat)))
}

// BulkSaveSpiderLog 把同一份日志应用到批次内的多只个体
// 不属于该批次的目标会被过滤掉，响应里的 count 是实际写入数
func (a *API) BulkSaveSpiderLog(c *gin.Context) {
	batchID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的批次ID")
		return
	}

	day, err := parseDayParam(c, "day")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	var payload bulkLogPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	input := service.SpiderLogInput{
		Fed:        payload.Fed,
		Ate:        payload.Ate,
		Watered:    payload.Watered,
		Molting:    payload.Molting,
		MoltsCount: payload.MoltsCount,
		Notes:      payload.Notes,
		Booty:      defaultBooty,
	}
	if payload.Booty != nil {
		input.Booty = *payload.Booty
	}

	count, err := a.spiderLogs.BulkUpsert(batchID, payload.SpiderIDs, day, input)
	if err != nil {
		if errors.Is(err, service.ErrNoValidTargets) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "没有属于该批次的目标"})
			return
		}
		respondError(c, http.StatusInternalServerError, "批量保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "count": count})
}

// SetHighlight 写入或清除个体标记色
func (a *API) SetHighlight(c *gin.Context) {
	spiderID, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("spider_id")), 10, 32)
	if err != nil || spiderID == 0 {
		respondError(c, http.StatusBadRequest, "无效的个体ID")
		return
	}

	color := c.PostForm("color")

	if err := a.spiderLogs.SetHighlight(uint(spiderID), color); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidColor):
			respondError(c, http.StatusBadRequest, "颜色不在调色板内")
		case errors.Is(err, service.ErrSpiderNotFound):
			respondError(c, http.StatusNotFound, "个体不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func spiderLogInputFromForm(c *gin.Context) service.SpiderLogInput {
	moltsCount, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("molts_count", "0")))
	if err != nil {
		moltsCount = 0
	}

	booty, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("booty", strconv.Itoa(defaultBooty))))
	if err != nil {
		booty = defaultBooty
	}

	return service.SpiderLogInput{
		Fed:        c.DefaultPostForm("fed", "no"),
		Ate:        c.DefaultPostForm("ate", "no"),
		Watered:    c.DefaultPostForm("watered", "no"),
		Molting:    c.DefaultPostForm("molting", "no"),
		MoltsCount: moltsCount,
		Notes:      c.PostForm("notes"),
		Booty:      booty,
	}
}
