package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chat-relay/internal/auth"
	"chat-relay/internal/domain"
	"chat-relay/internal/llm"
	"chat-relay/internal/service"
	"chat-relay/internal/storage"
)

const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	chats       service.ChatService
	tokens      *auth.TokenService
	storage     storage.Service
	storageOpts storage.UploadOptions
	logger      *logrus.Logger
}

func NewHandler(users service.UserService, chats service.ChatService, tokens *auth.TokenService, store storage.Service, storageOpts storage.UploadOptions, logger *logrus.Logger) *Handler {
	return &Handler{
		users:       users,
		chats:       chats,
		tokens:      tokens,
		storage:     store,
		storageOpts: storageOpts,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	chat := router.Group("/chat")
	chat.Use(h.authRequired())
	{
		chat.GET("/history", h.getHistory)
		chat.POST("/send", h.sendMessage)
		chat.POST("/export", h.exportTranscript)
	}

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired is the single authorization gate for protected routes. It
// resolves the bearer token to (user id, username) or rejects with 401.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			// Expired and invalid are reported distinctly so clients can
			// prompt re-login instead of rejecting outright.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrTokenInvalid.Error()})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.respondError(c, err)
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.respondError(c, err)
		return
	}

	h.respondWithToken(c, user)
}

func (h *Handler) respondWithToken(c *gin.Context, user *domain.User) {
	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{
		Token:    token,
		Username: user.Username,
		UserID:   user.ID,
	})
}

type messageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) getHistory(c *gin.Context) {
	userID := c.GetInt64(ctxUserID)

	messages, err := h.chats.History(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]messageResponse, len(messages))
	for i, msg := range messages {
		resp[i] = messageResponse{
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, resp)
}

type sendRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64(ctxUserID)

	reply, err := h.chats.Send(c.Request.Context(), userID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) exportTranscript(c *gin.Context) {
	if h.storage == nil || h.storageOpts.Bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcript storage not configured"})
		return
	}

	userID := c.GetInt64(ctxUserID)
	username := c.GetString(ctxUsername)

	messages, err := h.chats.History(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := storage.RenderTranscript(username, messages)
	location, err := h.storage.UploadTranscript(c.Request.Context(), storage.TranscriptKey(username), body, h.storageOpts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location})
}

// respondError maps error kinds to status classes at the boundary. A gateway
// failure is the caller's 502; everything unclassified is a request-scoped 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var upstreamErr *llm.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.logger.WithError(err).Warn("upstream reply generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "reply generation failed"})
		return
	}

	h.logger.WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
