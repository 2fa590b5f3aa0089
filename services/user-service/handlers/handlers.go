package handlers

import (
	"os"

	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/middleware"
	"corpfood-backend/internal/stores/kafka"
	"corpfood-backend/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	u        *users.Conf
	k        *kafka.Conf
	keys     *auth.Keys
	validate *validator.Validate
}

func NewHandler(u *users.Conf, k *kafka.Conf, keys *auth.Keys) *Handler {
	return &Handler{
		u:        u,
		k:        k,
		keys:     keys,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, u *users.Conf, kafkaConf *kafka.Conf) *gin.Engine {
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

	h := NewHandler(u, kafkaConf, keys)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)
		v1.Use(m.Authentication())
		v1.GET("/me", h.Me)
		v1.GET("/verify-token", h.VerifyToken)
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}
