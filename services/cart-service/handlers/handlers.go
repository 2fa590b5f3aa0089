package handlers

import (
	"os"
	"strconv"

	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/cart"
	"corpfood-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	consulapi "github.com/hashicorp/consul/api"
)

type Handler struct {
	client *consulapi.Client
	store  *cart.Store
}

func NewHandler(client *consulapi.Client, store *cart.Store) *Handler {
	return &Handler{
		client: client,
		store:  store,
	}
}

func API(endpointPrefix string, keys *auth.Keys, client *consulapi.Client, store *cart.Store) *gin.Engine {
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

	h := NewHandler(client, store)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/ping", HealthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.Use(m.Authentication())
		v1.GET("", h.View)
		v1.GET("/count", h.Count)
		v1.POST("/items", h.AddItem)
		v1.PUT("/items/:id", h.UpdateQuantity)
		v1.DELETE("/items/:id", h.RemoveItem)
		v1.DELETE("", h.Clear)
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
