package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedback-board/internal/service"
)

type ExportObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
	URL          string  `json:"url"`
}

func (h *Handler) createExport(c *gin.Context) {
	if h.exports == nil {
		h.writeError(c, service.ErrExportsNotConfigured)
		return
	}

	location, err := h.exports.Export(c.Request.Context(), currentSubject(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": location})
}

func (h *Handler) listExports(c *gin.Context) {
	if h.exports == nil {
		h.writeError(c, service.ErrExportsNotConfigured)
		return
	}

	objects, err := h.exports.List(c.Request.Context(), currentSubject(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ExportObjectResponse, len(objects))
	for i := range objects {
		resp[i] = exportToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func exportToResponse(obj service.ExportObject) ExportObjectResponse {
	resp := ExportObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
		URL:  obj.URL,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
