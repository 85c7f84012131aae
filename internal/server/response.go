package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasirhq/kasira/pkg/db/pagination"
)

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ErrorCode string    `json:"error_code,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Page wraps list payloads together with their page metadata.
type Page struct {
	Content  any                 `json:"content"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

func respondOK(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, message, data)
}

func respondCreated(c *gin.Context, message string, data any) {
	respond(c, http.StatusCreated, message, data)
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
