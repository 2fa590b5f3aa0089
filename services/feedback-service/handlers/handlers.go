package handlers

import (
	"os"
	"strconv"

	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/cafes"
	"corpfood-backend/internal/feedback"
	"corpfood-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	f        *feedback.Service
	cf       *cafes.Conf
	validate *validator.Validate
}

func NewHandler(f *feedback.Service, cf *cafes.Conf) *Handler {
	return &Handler{
		f:        f,
		cf:       cf,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, service *feedback.Service, cf *cafes.Conf) *gin.Engine {
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

	h := NewHandler(service, cf)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.Use(m.Authentication())
		v1.GET("/can/:orderID", m.Authorize(h.CanGive, auth.RoleEmployee))
		v1.POST("/order/:orderID", m.Authorize(h.Create, auth.RoleEmployee))
		v1.GET("/order/:orderID", m.Authorize(h.GetByOrder, auth.RoleEmployee))
		v1.GET("/mine", m.Authorize(h.ListMine, auth.RoleEmployee))
		v1.GET("/cafe/:cafeID", m.Authorize(h.ListByCafe, auth.RoleCafeOwner))
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
