package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jumperlog/internal/db"
	"github.com/jumperlog/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) (*API, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Batch{}, &db.Spider{}, &db.SpiderDayLog{}, &db.Highlight{}, &db.DayLog{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return NewAPI(db.DB, ""), func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedBatchWithSpiders(t *testing.T, name string, count int) (*db.Batch, []db.Spider) {
	t.Helper()

	svc := service.NewBatchService(db.DB)
	batch, err := svc.Create(service.BatchInput{Name: name, SpiderCount: count})
	if err != nil {
		t.Fatalf("failed to seed batch: %v", err)
	}

	spiders, err := svc.ListSpiders(batch.ID)
	if err != nil {
		t.Fatalf("failed to list spiders: %v", err)
	}

	return batch, spiders
}

func postForm(t *testing.T, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestBulkSaveFiltersCrossBatchTargets(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	batchA, spidersA := seedBatchWithSpiders(t, "A 组", 2)
	_, spidersB := seedBatchWithSpiders(t, "B 组", 1)

	payload := map[string]any{
		"spider_ids": []uint{spidersA[0].ID, spidersB[0].ID},
		"fed":        "yes",
		"booty":      4,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/batches/1/log/2026-05-01/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{
		gin.Param{Key: "id", Value: strconv.Itoa(int(batchA.ID))},
		gin.Param{Key: "day", Value: "2026-05-01"},
	}

	api.BulkSaveSpiderLog(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		OK    bool `json:"ok"`
		Count int  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK || resp.Count != 1 {
		t.Fatalf("expected ok with count 1, got %+v", resp)
	}

	var logCount int64
	db.DB.Model(&db.SpiderDayLog{}).Count(&logCount)
	if logCount != 1 {
		t.Fatalf("expected exactly 1 log row, got %d", logCount)
	}
}

func TestBulkSaveNoValidTargets(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	batchA, _ := seedBatchWithSpiders(t, "A 组", 1)
	_, spidersB := seedBatchWithSpiders(t, "B 组", 1)

	payload := map[string]any{"spider_ids": []uint{spidersB[0].ID}, "fed": "yes"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/batches/1/log/2026-05-01/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{
		gin.Param{Key: "id", Value: strconv.Itoa(int(batchA.ID))},
		gin.Param{Key: "day", Value: "2026-05-01"},
	}

	api.BulkSaveSpiderLog(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestBulkSaveRejectsMalformedDay(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	batchA, _ := seedBatchWithSpiders(t, "A 组", 1)

	req := httptest.NewRequest(http.MethodPost, "/batches/1/log/not-a-day/bulk", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{
		gin.Param{Key: "id", Value: strconv.Itoa(int(batchA.ID))},
		gin.Param{Key: "day", Value: "not-a-day"},
	}

	api.BulkSaveSpiderLog(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestSaveSpiderLogDefaultsBootyAndRedirects(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	batch, spiders := seedBatchWithSpiders(t, "表单测试", 1)

	req := postForm(t, url.Values{
		"fed":   {"yes"},
		"notes": {"正常进食"},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{
		gin.Param{Key: "id", Value: strconv.Itoa(int(spiders[0].ID))},
		gin.Param{Key: "day", Value: "2026-05-10"},
	}

	api.SaveSpiderLog(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}

	wantLocation := "/batches/" + strconv.Itoa(int(batch.ID)) + "/day/2026-05-10"
	if got := w.Header().Get("Location"); got != wantLocation {
		t.Fatalf("expected redirect to %s, got %s", wantLocation, got)
	}

	var record db.SpiderDayLog
	if err := db.DB.Where("spider_id = ?", spiders[0].ID).First(&record).Error; err != nil {
		t.Fatalf("failed to load saved log: %v", err)
	}
	if record.Booty != 3 {
		t.Fatalf("expected missing booty to default to 3, got %d", record.Booty)
	}
	if record.Fed != "yes" || record.Notes != "正常进食" {
		t.Fatalf("unexpected stored fields: %+v", record)
	}
}

func TestSaveSpiderLogBackToCalendar(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	_, spiders := seedBatchWithSpiders(t, "日历返回", 1)

	req := postForm(t, url.Values{
		"fed":  {"yes"},
		"back": {"calendar"},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{
		gin.Param{Key: "id", Value: strconv.Itoa(int(spiders[0].ID))},
		gin.Param{Key: "day", Value: "2026-05-10"},
	}

	api.SaveSpiderLog(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/calendar/2026/5" {
		t.Fatalf("expected redirect to /calendar/2026/5, got %s", got)
	}
}

func TestSaveSpiderLogUnknownSpider(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	req := postForm(t, url.Values{"fed": {"yes"}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{
		gin.Param{Key: "id", Value: "777"},
		gin.Param{Key: "day", Value: "2026-05-10"},
	}

	api.SaveSpiderLog(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestSetHighlightRejectsUnknownColor(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	_, spiders := seedBatchWithSpiders(t, "标记", 1)

	req := postForm(t, url.Values{
		"spider_id": {strconv.Itoa(int(spiders[0].ID))},
		"color":     {"#NOTACOLOR"},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.SetHighlight(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var count int64
	db.DB.Model(&db.Highlight{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no highlight rows, got %d", count)
	}
}

func TestSetHighlightAccepted(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	_, spiders := seedBatchWithSpiders(t, "标记", 1)

	req := postForm(t, url.Values{
		"spider_id": {strconv.Itoa(int(spiders[0].ID))},
		"color":     {"#14B8A6"},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	api.SetHighlight(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var record db.Highlight
	if err := db.DB.Where("spider_id = ?", spiders[0].ID).First(&record).Error; err != nil {
		t.Fatalf("failed to load highlight: %v", err)
	}
	if record.Color != "#14B8A6" {
		t.Fatalf("unexpected stored color: %q", record.Color)
	}
}
