package handlers

import (
	"os"
	"strconv"

	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/cafes"
	"corpfood-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	cf       *cafes.Conf
	validate *validator.Validate
}

func NewHandler(cf *cafes.Conf) *Handler {
	return &Handler{
		cf:       cf,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, cf *cafes.Conf) *gin.Engine {
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

	h := NewHandler(cf)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.GET("", h.ListActive)
		v1.GET("/:id", h.Get)
		v1.Use(m.Authentication())
		v1.POST("", m.Authorize(h.Create, auth.RoleCafeOwner))
		v1.GET("/mine/list", m.Authorize(h.ListMine, auth.RoleCafeOwner))
		v1.PUT("/:id", m.Authorize(h.Update, auth.RoleCafeOwner))
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

// authenticatedUser pulls the verified claims out of the request context and
// parses the numeric user id from the token subject.
func authenticatedUser(c *gin.Context) (int64, auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		return 0, auth.Claims{}, false
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, auth.Claims{}, false
	}
	return userID, claims, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
