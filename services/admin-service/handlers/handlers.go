package handlers

import (
	"os"
	"strconv"

	"corpfood-backend/internal/admin"
	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/middleware"
	"corpfood-backend/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	a        *admin.Conf
	u        *users.Conf
	validate *validator.Validate
}

func NewHandler(a *admin.Conf, u *users.Conf) *Handler {
	return &Handler{
		a:        a,
		u:        u,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, a *admin.Conf, u *users.Conf) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(a, u)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.Use(m.Authentication())
		v1.GET("/stats", m.Authorize(h.Stats, auth.RoleSuperAdmin))
		v1.GET("/users", m.Authorize(h.ListUsers, auth.RoleSuperAdmin))
		v1.POST("/users", m.Authorize(h.CreateUser, auth.RoleSuperAdmin))
		v1.PATCH("/users/:id/active", m.Authorize(h.SetUserActive, auth.RoleSuperAdmin))
		v1.GET("/cafes", m.Authorize(h.ListCafes, auth.RoleSuperAdmin))
		v1.PATCH("/cafes/:id/active", m.Authorize(h.SetCafeActive, auth.RoleSuperAdmin))
		v1.GET("/orders", m.Authorize(h.ListOrders, auth.RoleSuperAdmin))
		v1.GET("/items", m.Authorize(h.ListItems, auth.RoleSuperAdmin))
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
