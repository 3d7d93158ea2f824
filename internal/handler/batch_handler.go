package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jumperlog/internal/service"
	"github.com/jumperlog/internal/view"
)

// Home 重定向到今日视图
func (a *API) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/today")
}

// Today 跳到最近查看的批次；会话里没有就取最新批次，一个都没有则回列表页
func (a *API) Today(c *gin.Context) {
	session := sessions.Default(c)

	batchID, ok := session.Get(sessionLastBatch).(uint)
	if ok {
		// 会话值仅是提示，批次可能已被删除
		if _, err := a.batches.Get(batchID); err != nil {
			ok = false
		}
	}

	if !ok {
		batch, err := a.batches.Latest()
		if err != nil {
			c.Redirect(http.StatusFound, "/batches")
			return
		}
		batchID = batch.ID
		session.Set(sessionLastBatch, batchID)
		session.Save()
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/batches/%d", batchID))
}

// ShowBatchList 渲染批次列表页面
func (a *API) ShowBatchList(c *gin.Context) {
	a.renderBatchList(c, http.StatusOK, "")
}

func (a *API) renderBatchList(c *gin.Context, status int, errMsg string) {
	batches, err := a.batches.List()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "batches.html", gin.H{
			"title": "批次列表",
			"error": "获取批次列表失败",
		})
		return
	}

	data := gin.H{
		"title":   "批次列表",
		"batches": batches,
	}
	if errMsg != "" {
		data["error"] = errMsg
	}

	c.HTML(status, "batches.html", data)
}

// CreateBatch 创建批次并生成编号 1..N 的个体，成功后跳到新批次视图
func (a *API) CreateBatch(c *gin.Context) {
	name := c.PostForm("name")

	count, err := strconv.Atoi(strings.TrimSpace(c.PostForm("count")))
	if err != nil {
		count = 0
	}

	batch, err := a.batches.Create(service.BatchInput{Name: name, SpiderCount: count})
	if err != nil {
		if errors.Is(err, service.ErrBatchInvalidInput) {
			a.renderBatchList(c, http.StatusBadRequest, "批次名称不能为空，数量必须大于 0")
			return
		}
		a.renderBatchList(c, http.StatusInternalServerError, "创建批次失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionLastBatch, batch.ID)
	session.Save()

	c.Redirect(http.StatusFound, fmt.Sprintf("/batches/%d", batch.ID))
}

// DeleteBatch 删除批次（级联清理个体、日志、标记色），删除不存在的批次也回列表页
func (a *API) DeleteBatch(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的批次ID")
		return
	}

	if err := a.batches.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除批次失败")
		return
	}

	session := sessions.Default(c)
	if lastID, ok := session.Get(sessionLastBatch).(uint); ok && lastID == id {
		session.Delete(sessionLastBatch)
		session.Save()
	}

	c.Redirect(http.StatusFound, "/batches")
}

// ShowBatchDay 渲染批次某一天的个体网格：当日日志、标记色、调色板
// 路由不带 day 段时默认今天
func (a *API) ShowBatchDay(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的批次ID")
		return
	}

	day := time.Now().In(time.Local)
	if c.Param("day") != "" {
		day, err = parseDayParam(c, "day")
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的日期")
			return
		}
	}

	batch, err := a.batches.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			c.Redirect(http.StatusFound, "/batches")
			return
		}
		respondError(c, http.StatusInternalServerError, "加载批次失败")
		return
	}

	spiders, err := a.batches.ListSpiders(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载个体列表失败")
		return
	}

	logMap, err := a.spiderLogs.LogsForDay(id, day)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载当日日志失败")
		return
	}

	highlightMap, err := a.spiderLogs.HighlightsForBatch(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "加载标记色失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionLastBatch, batch.ID)
	session.Save()

	c.HTML(http.StatusOK, "batch_view.html", gin.H{
		"title":        batch.Name,
		"batch":        batch,
		"spiders":      spiders,
		"day":          day.Format(dateFormat),
		"logMap":       logMap,
		"highlightMap": highlightMap,
		"lastFedColor": batch.LastFedColor,
		"palette":      view.HighlightPalette,
	})
}

// SetLastFedColor 更新批次的"上次喂食"标记色
func (a *API) SetLastFedColor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的批次ID")
		return
	}

	color := c.PostForm("color")

	if err := a.batches.SetLastFedColor(id, color); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidColor):
			respondError(c, http.StatusBadRequest, "颜色不在调色板内")
		case errors.Is(err, service.ErrBatchNotFound):
			respondError(c, http.StatusNotFound, "批次不存在")
		default:
			respondError(c, http.StatusInternalServerError, "保存失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
