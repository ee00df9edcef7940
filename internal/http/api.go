package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"feedback-board/internal/auth"
	"feedback-board/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	feedback service.FeedbackService
	exports  service.ExportService
	tokens   *auth.TokenManager
	logger   logrus.FieldLogger
	debug    bool
}

// NewHandler builds the HTTP surface. exports may be nil when board exports are disabled.
func NewHandler(users service.UserService, feedback service.FeedbackService, exports service.ExportService, tokens *auth.TokenManager, logger logrus.FieldLogger, debug bool) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		users:    users,
		feedback: feedback,
		exports:  exports,
		tokens:   tokens,
		logger:   logger,
		debug:    debug,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	public := router.Group("/feedback")
	{
		public.GET("", h.listFeedback)
		public.GET("/:id", h.getFeedback)
	}

	protected := router.Group("/feedback", h.requireAuth())
	{
		protected.POST("", h.createFeedback)
		protected.PUT("/:id", h.updateFeedback)
		protected.PUT("/:id/status", h.updateStatus)
		protected.DELETE("/:id", h.deleteFeedback)
		protected.POST("/:id/upvote", h.upvote)
		protected.POST("/:id/remove-upvote", h.removeUpvote)
		protected.POST("/:id/comments", h.addComment)
		protected.DELETE("/:id/comments/:commentId", h.deleteComment)
		protected.POST("/:id/comments/:commentId/reply", h.addReply)
		protected.DELETE("/:id/comments/:commentId/replies/:replyId", h.deleteReply)
	}

	me := router.Group("/me", h.requireAuth())
	{
		me.GET("/feedback", h.listMine)
		me.GET("/upvoted", h.listUpvoted)
	}

	admin := router.Group("/admin", h.requireAuth(), h.requireAdmin())
	{
		admin.POST("/exports", h.createExport)
		admin.GET("/exports", h.listExports)
	}
}
