package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parseDayParam 解析路径里的日期段，格式固定为 2006-01-02
func parseDayParam(c *gin.Context, key string) (time.Time, error) {
	raw := c.Param(key)
	day, err := time.ParseInLocation(dateFormat, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s", key)
	}
	return day, nil
}
