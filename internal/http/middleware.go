package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"feedback-board/internal/apperr"
	"feedback-board/internal/auth"
	"feedback-board/internal/domain"
)

const subjectKey = "subject"

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

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}
		if subject, ok := subjectFromGin(c); ok {
			fields["subject"] = subject.ID
		}

		entry := logger.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// requireAuth verifies the bearer assertion before any protected handler runs.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			h.abortWithError(c, err)
			return
		}
		subject, err := h.tokens.Verify(raw)
		if err != nil {
			h.abortWithError(c, err)
			return
		}

		c.Set(subjectKey, subject)
		c.Request = c.Request.WithContext(auth.WithSubject(c.Request.Context(), subject))
		c.Next()
	}
}

func (h *Handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := subjectFromGin(c)
		if !ok || !subject.IsAdmin() {
			h.abortWithError(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

func subjectFromGin(c *gin.Context) (domain.Subject, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return domain.Subject{}, false
	}
	subject, ok := v.(domain.Subject)
	return subject, ok
}

// currentSubject returns the verified subject or the zero value on public routes.
func currentSubject(c *gin.Context) domain.Subject {
	subject, _ := subjectFromGin(c)
	return subject
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status, body := h.errorBody(c, err)
	c.JSON(status, body)
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status, body := h.errorBody(c, err)
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) errorBody(c *gin.Context, err error) (int, gin.H) {
	code := apperr.CodeOf(err)
	body := gin.H{
		"code":    code,
		"message": apperr.PublicMessage(err),
	}
	if code == apperr.CodeInternal {
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("internal error")
		if h.debug {
			body["detail"] = err.Error()
		}
	}
	return code.HTTPStatus(), body
}
