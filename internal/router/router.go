package router

import (
	"html/template"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jumperlog/internal/config"
	"github.com/jumperlog/internal/db"
	"github.com/jumperlog/internal/handler"
	"github.com/jumperlog/internal/service"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("jumperlog_session", store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"eq": func(a, b interface{}) bool {
			return a == b
		},
		// 按 (spider_id, day) 取个体日志，模板里没法直接拼结构体键
		"spiderLog": func(m map[service.LogKey]db.SpiderDayLog, spiderID uint, day string) *db.SpiderDayLog {
			if logRow, ok := m[service.LogKey{SpiderID: spiderID, Day: day}]; ok {
				return &logRow
			}
			return nil
		},
		"dateKey": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		// index 取不到时返回零值结构体，模板里判断不出来，单独给个存在性检查
		"hasDayLog": func(m map[string]db.DayLog, key string) bool {
			_, ok := m[key]
			return ok
		},
	})
	r.LoadHTMLGlob("web/template/*.html")

	// 静态文件服务
	r.Static("/static", "./web/static")

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := handler.NewAPI(db.DB, cfg.AppPassword)

	// 登录门槛（未配置口令时中间件直接放行）
	r.GET("/login", api.ShowLoginPage)
	r.POST("/login", api.Login)
	r.GET("/logout", api.Logout)

	auth := r.Group("")
	auth.Use(api.AuthRequired())
	{
		auth.GET("/", api.Home)
		auth.GET("/today", api.Today)

		auth.GET("/batches", api.ShowBatchList)
		auth.POST("/batches", api.CreateBatch)
		auth.GET("/batches/:id", api.ShowBatchDay)
		auth.GET("/batches/:id/day/:day", api.ShowBatchDay)
		auth.GET("/batches/:id/delete", api.DeleteBatch)
		auth.POST("/batches/:id/delete", api.DeleteBatch)
		auth.POST("/batches/:id/last_fed", api.SetLastFedColor)
		auth.POST("/batches/:id/log/:day/bulk", api.BulkSaveSpiderLog)

		auth.POST("/spiders/:id/log/:day", api.SaveSpiderLog)
		auth.POST("/highlights", api.SetHighlight)

		auth.GET("/calendar", api.ShowCalendar)
		auth.GET("/calendar/:year/:month", api.ShowCalendar)

		auth.GET("/days/:day", api.ShowDay)
		auth.POST("/days/:day", api.SaveDay)
		auth.GET("/api/days/:day", api.GetDayPopup)
	}

	return r
}
