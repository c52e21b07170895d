package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/videotube/videotube-api/internal/application"
	"github.com/videotube/videotube-api/internal/interface/middleware"
	"github.com/videotube/videotube-api/pkg/response"
)

type ChannelHandler struct {
	Svc    *application.ChannelService
	Logger *logrus.Logger
}

func NewChannelHandler(svc *application.ChannelService, logger *logrus.Logger) *ChannelHandler {
	return &ChannelHandler{Svc: svc, Logger: logger}
}

// Profile handles GET /c/:username. The resolved caller is the viewer used
// for the isSubscribed flag.
func (h *ChannelHandler) Profile(c *gin.Context) {
	viewerID := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.Profile(c.Request.Context(), viewerID, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "channel profile")
}

// ToggleSubscription handles POST /c/:username/subscribe.
func (h *ChannelHandler) ToggleSubscription(c *gin.Context) {
	viewerID := c.GetString(middleware.CtxUserIDKey)
	subscribed, err := h.Svc.ToggleSubscription(c.Request.Context(), viewerID, c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	msg := "unsubscribed"
	if subscribed {
		msg = "subscribed"
	}
	response.Success(c, http.StatusOK, gin.H{"subscribed": subscribed}, msg)
}

// WatchHistory handles GET /history.
func (h *ChannelHandler) WatchHistory(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	entries, err := h.Svc.WatchHistory(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries, "watch history")
}

// RecordWatch handles POST /history/:videoId.
func (h *ChannelHandler) RecordWatch(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.RecordWatch(c.Request.Context(), uid, c.Param("videoId")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, nil, "watch recorded")
}

// Search handles GET /channels/search?q=&size=.
func (h *ChannelHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "channels")
}
