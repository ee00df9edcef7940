package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"feedback-board/internal/apperr"
	"feedback-board/internal/domain"
	"feedback-board/internal/service"
)

type feedbackRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (r feedbackRequest) input() service.FeedbackInput {
	return service.FeedbackInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.Category(r.Category),
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

// listFilter reads the optional list predicates from the query string.
func listFilter(c *gin.Context) domain.ListFilter {
	filter := domain.ListFilter{
		Status:    domain.Status(strings.TrimSpace(c.Query("status"))),
		Category:  domain.Category(strings.TrimSpace(c.Query("category"))),
		CreatedBy: strings.TrimSpace(c.Query("createdBy")),
		Search:    c.Query("search"),
	}
	if domain.SortMode(c.Query("sort")) == domain.SortUpvotes {
		filter.Sort = domain.SortUpvotes
	} else {
		filter.Sort = domain.SortNewest
	}
	return filter
}

func (h *Handler) listFeedback(c *gin.Context) {
	h.respondList(c, listFilter(c))
}

func (h *Handler) listMine(c *gin.Context) {
	filter := listFilter(c)
	filter.CreatedBy = currentSubject(c).ID
	h.respondList(c, filter)
}

func (h *Handler) listUpvoted(c *gin.Context) {
	filter := listFilter(c)
	filter.UpvotedBy = currentSubject(c).ID
	h.respondList(c, filter)
}

func (h *Handler) respondList(c *gin.Context, filter domain.ListFilter) {
	items, err := h.feedback.List(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]FeedbackResponse, len(items))
	for i := range items {
		resp[i] = feedbackToResponse(items[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getFeedback(c *gin.Context) {
	f, err := h.feedback.Get(c.Request.Context(), c.Param("id"))
	h.respondFeedback(c, http.StatusOK, f, err)
}

func (h *Handler) createFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperr.InvalidArgument("invalid request body"))
		return
	}

	f, err := h.feedback.Create(c.Request.Context(), currentSubject(c), req.input())
	h.respondFeedback(c, http.StatusCreated, f, err)
}

func (h *Handler) updateFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperr.InvalidArgument("invalid request body"))
		return
	}

	f, err := h.feedback.UpdateContent(c.Request.Context(), currentSubject(c), c.Param("id"), req.input())
	h.respondFeedback(c, http.StatusOK, f, err)
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperr.InvalidArgument("status is required"))
		return
	}

	status := domain.Status(strings.TrimSpace(req.Status))
	f, err := h.feedback.UpdateStatus(c.Request.Context(), currentSubject(c), c.Param("id"), status)
	h.respondFeedback(c, http.StatusOK, f, err)
}

func (h *Handler) deleteFeedback(c *gin.Context) {
	id := c.Param("id")
	if err := h.feedback.Delete(c.Request.Context(), currentSubject(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback deleted", "deleted": id})
}

func (h *Handler) upvote(c *gin.Context) {
	f, err := h.feedback.Upvote(c.Request.Context(), currentSubject(c), c.Param("id"))
	h.respondFeedback(c, http.StatusOK, f, err)
}

func (h *Handler) removeUpvote(c *gin.Context) {
	f, err := h.feedback.RemoveUpvote(c.Request.Context(), currentSubject(c), c.Param("id"))
	h.respondFeedback(c, http.StatusOK, f, err)
}

func (h *Handler) addComment(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperr.InvalidArgument("comment text is required"))
		return
	}

	f, err := h.feedback.AddComment(c.Request.Context(), currentSubject(c), c.Param("id"), req.Text)
	h.respondFeedback(c, http.StatusCreated, f, err)
}

func (h *Handler) addReply(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperr.InvalidArgument("reply text is required"))
		return
	}

	f, err := h.feedback.AddReply(c.Request.Context(), currentSubject(c), c.Param("id"), c.Param("commentId"), req.Text)
	h.respondFeedback(c, http.StatusCreated, f, err)
}

func (h *Handler) deleteComment(c *gin.Context) {
	f, err := h.feedback.DeleteComment(c.Request.Context(), currentSubject(c), c.Param("id"), c.Param("commentId"))
	h.respondFeedback(c, http.StatusOK, f, err)
}

func (h *Handler) deleteReply(c *gin.Context) {
	f, err := h.feedback.DeleteReply(c.Request.Context(), currentSubject(c), c.Param("id"), c.Param("commentId"), c.Param("replyId"))
	h.respondFeedback(c, http.StatusOK, f, err)
}

func (h *Handler) respondFeedback(c *gin.Context, status int, f *service.ResolvedFeedback, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, feedbackToResponse(*f))
}
