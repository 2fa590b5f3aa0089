package handlers

import (
	"os"
	"strconv"

	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/menu"
	"corpfood-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	m        *menu.Conf
	validate *validator.Validate
}

func NewHandler(m *menu.Conf) *Handler {
	return &Handler{
		m:        m,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, keys *auth.Keys, menuConf *menu.Conf) *gin.Engine {
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

	h := NewHandler(menuConf)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.GET("/categories", h.ListCategories)
		v1.GET("/items", h.ListItems)
		v1.GET("/items/search", h.SearchItems)
		v1.GET("/items/:id", h.GetItem)
		v1.GET("/cafes/:id/items", h.ListCafeItems)

		v1.Use(m.Authentication())
		v1.POST("/categories", m.Authorize(h.CreateCategory, auth.RoleCafeOwner, auth.RoleSuperAdmin))
		v1.POST("/cafes/:id/items", m.Authorize(h.CreateItem, auth.RoleCafeOwner))
		v1.GET("/cafes/:id/items/manage", m.Authorize(h.ListCafeItemsForOwner, auth.RoleCafeOwner))
		v1.PUT("/items/:id", m.Authorize(h.UpdateItem, auth.RoleCafeOwner))
		v1.DELETE("/items/:id", m.Authorize(h.DeleteItem, auth.RoleCafeOwner))
		v1.PATCH("/items/:id/availability", m.Authorize(h.SetAvailability, auth.RoleCafeOwner))
		v1.POST("/items/:id/restock", m.Authorize(h.RestockItem, auth.RoleCafeOwner))

		// Service-to-service reservation used by the order checkout flow.
		v1.POST("/internal/reserve", h.Reserve)
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
