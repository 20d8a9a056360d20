package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/qodirovs/finance_tracker_app/internal/core/ports/services"
	"github.com/qodirovs/finance_tracker_app/internal/dto"
	"github.com/qodirovs/finance_tracker_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// supportHandler handles HTTP requests for the support thread.
type supportHandler struct {
	supportService portssvc.SupportSvcFacade
	userService    portssvc.UserSvcFacade
}

// newSupportHandler creates a new supportHandler.
func newSupportHandler(ss portssvc.SupportSvcFacade, us portssvc.UserSvcFacade) *supportHandler {
	return &supportHandler{
		supportService: ss,
		userService:    us,
	}
}

// registerSupportRoutes registers the user-facing and admin support routes.
func registerSupportRoutes(rg *gin.RouterGroup, supportService portssvc.SupportSvcFacade, userService portssvc.UserSvcFacade) {
	h := newSupportHandler(supportService, userService)

	support := rg.Group("/support")
	{
		support.POST("", h.postMessage)
		support.GET("", h.listThread)
		support.GET("/unread", h.unreadCount)
	}

	admin := rg.Group("/admin/support", h.requireAdmin)
	{
		admin.GET("/threads", h.listOpenThreads)
		admin.GET("/threads/:userID", h.listThreadAsAdmin)
		admin.POST("/threads/:userID/reply", h.replyAsAdmin)
	}
}

// requireAdmin aborts the request unless the authenticated user is an admin.
func (h *supportHandler) requireAdmin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil || !user.IsAdmin {
		logger.Warn("Non-admin attempted admin support access", slog.String("user_id", userID))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	c.Next()
}

// postMessage godoc
// @Summary Post a support message
// @Description Appends a message to the user's support thread
// @Tags support
// @Accept  json
// @Produce  json
// @Param   message body dto.PostSupportMessageRequest true "Message body"
// @Success 201 {object} dto.SupportMessageResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to post message"
// @Security BearerAuth
// @Router /support [post]
func (h *supportHandler) postMessage(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostSupportMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostSupportMessage", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	message, err := h.supportService.PostMessage(c.Request.Context(), userID, req.Body, false)
	if err != nil {
		logger.Error("Failed to post support message", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post message"})
		return
	}

	logger.Info("Support message posted", slog.String("message_id", message.MessageID))
	c.JSON(http.StatusCreated, dto.ToSupportMessageResponse(message))
}

// listThread godoc
// @Summary List the support thread
// @Description Retrieves a token-paginated page of the user's thread, newest first. Admin replies are marked read.
// @Tags support
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.SupportThreadResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list thread"
// @Security BearerAuth
// @Router /support [get]
func (h *supportHandler) listThread(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, nextToken := pageParams(c)
	messages, newToken, err := h.supportService.ListThread(c.Request.Context(), userID, limit, nextToken)
	if err != nil {
		logger.Error("Failed to list support thread", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list thread"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSupportThreadResponse(messages, newToken))
}

// unreadCount godoc
// @Summary Count unread admin replies
// @Tags support
// @Produce  json
// @Success 200 {object} dto.UnreadCountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to count unread messages"
// @Security BearerAuth
// @Router /support/unread [get]
func (h *supportHandler) unreadCount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	count, err := h.supportService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to count unread support messages", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count unread messages"})
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Unread: count})
}

// listOpenThreads godoc
// @Summary List open support threads
// @Description Lists users whose threads have messages no admin has read yet (admin only)
// @Tags support
// @Produce  json
// @Success 200 {object} map[string][]string
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list open threads"
// @Security BearerAuth
// @Router /admin/support/threads [get]
func (h *supportHandler) listOpenThreads(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userIDs, err := h.supportService.ListOpenThreads(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list open support threads", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list open threads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"userIDs": userIDs})
}

// listThreadAsAdmin godoc
// @Summary Read a user's support thread
// @Description Retrieves a user's thread and marks the user's messages as read on the admin side (admin only)
// @Tags support
// @Produce  json
// @Param   userID path string true "Thread owner's user ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token for the next page"
// @Success 200 {object} dto.SupportThreadResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list thread"
// @Security BearerAuth
// @Router /admin/support/threads/{userID} [get]
func (h *supportHandler) listThreadAsAdmin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	threadUserID := c.Param("userID")

	limit, nextToken := pageParams(c)
	messages, newToken, err := h.supportService.ListThread(c.Request.Context(), threadUserID, limit, nextToken)
	if err != nil {
		logger.Error("Failed to list support thread as admin", slog.String("error", err.Error()), slog.String("thread_user_id", threadUserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list thread"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSupportThreadResponse(messages, newToken))
}

// replyAsAdmin godoc
// @Summary Reply to a support thread
// @Description Posts an admin reply into a user's thread (admin only)
// @Tags support
// @Accept  json
// @Produce  json
// @Param   userID path string true "Thread owner's user ID"
// @Param   message body dto.PostSupportMessageRequest true "Reply body"
// @Success 201 {object} dto.SupportMessageResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Thread owner not found"
// @Failure 500 {object} map[string]string "Failed to post reply"
// @Security BearerAuth
// @Router /admin/support/threads/{userID}/reply [post]
func (h *supportHandler) replyAsAdmin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	threadUserID := c.Param("userID")
	var req dto.PostSupportMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for admin support reply", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	message, err := h.supportService.PostMessage(c.Request.Context(), threadUserID, req.Body, true)
	if err != nil {
		logger.Error("Failed to post admin support reply", slog.String("error", err.Error()), slog.String("thread_user_id", threadUserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post reply"})
		return
	}

	logger.Info("Admin reply posted", slog.String("message_id", message.MessageID), slog.String("thread_user_id", threadUserID))
	c.JSON(http.StatusCreated, dto.ToSupportMessageResponse(message))
}

// pageParams reads the shared limit and nextToken query parameters.
func pageParams(c *gin.Context) (int, *string) {
	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}
	return limit, nextToken
}
