package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "登录",
	})
}

// Login 校验共享访问口令并写入会话标记
func (a *API) Login(c *gin.Context) {
	password := c.PostForm("password")

	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"title": "登录",
			"error": "口令错误",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionLoggedInKey, true)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "登录",
			"error": "会话保存失败",
		})
		return
	}

	c.Redirect(http.StatusFound, "/today")
}

// Logout 清除会话并回到登录页
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}

// AuthRequired 是一个简单的认证中间件；未配置口令时直接放行
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.GateEnabled() {
			c.Next()
			return
		}

		session := sessions.Default(c)
		if loggedIn, ok := session.Get(sessionLoggedInKey).(bool); !ok || !loggedIn {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
