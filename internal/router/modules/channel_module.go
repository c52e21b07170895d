package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/videotube/videotube-api/internal/container"
	repo "github.com/videotube/videotube-api/internal/domain/repository"
	handlers "github.com/videotube/videotube-api/internal/interface/http"
	"github.com/videotube/videotube-api/internal/interface/middleware"
)

// ChannelModule wires the social-graph routes under /api/v1/users. Every
// route requires a resolved viewer identity.
type ChannelModule struct {
	Handler *handlers.ChannelHandler
	Users   repo.UserRepository
}

func NewChannelModule(h *handlers.ChannelHandler, users repo.UserRepository) *ChannelModule {
	return &ChannelModule{Handler: h, Users: users}
}

func (m *ChannelModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/users")
	auth.Use(middleware.Auth(m.Users, container.GetJWT()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/c/:username", m.Handler.Profile)
		auth.POST("/c/:username/subscribe", m.Handler.ToggleSubscription)
		auth.GET("/history", m.Handler.WatchHistory)
		auth.POST("/history/:videoId", m.Handler.RecordWatch)
		auth.GET("/channels/search", m.Handler.Search)
	}
}
