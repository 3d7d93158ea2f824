package handler

import (
	"log"

	"github.com/jumperlog/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	batches      *service.BatchService
	spiderLogs   *service.SpiderLogService
	dayLogs      *service.DayLogService
	passwordHash []byte
}

// session 键名：登录标记与"最近查看的批次"（仅做跳转提示，不参与鉴权和数据过滤）
const (
	sessionLoggedInKey = "logged_in"
	sessionLastBatch   = "last_batch"
)

const dateFormat = "2006-01-02"

// NewAPI constructs a handler set with shared services.
// appPassword 非空时启用登录门槛，启动时哈希一次，请求期只比较哈希。
func NewAPI(gdb *gorm.DB, appPassword string) *API {
	var hash []byte
	if appPassword != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(appPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash app password: %v", err)
		}
	}

	return &API{
		db:           gdb,
		batches:      service.NewBatchService(gdb),
		spiderLogs:   service.NewSpiderLogService(gdb),
		dayLogs:      service.NewDayLogService(gdb),
		passwordHash: hash,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// GateEnabled 返回是否启用了登录门槛
func (a *API) GateEnabled() bool {
	return len(a.passwordHash) > 0
}
