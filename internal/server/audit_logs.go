package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	"github.com/kasirhq/kasira/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	pagination.Pagination
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	TargetID   string `form:"target_id"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var startAt *time.Time
	if v := strings.TrimSpace(query.StartAt); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		startAt = &parsed
	}

	var endAt *time.Time
	if v := strings.TrimSpace(query.EndAt); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		endAt = &parsed
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListAuditLogRequest{
		Pagination: query.Pagination,
		Action:     strings.TrimSpace(query.Action),
		TargetType: strings.TrimSpace(query.TargetType),
		TargetID:   strings.TrimSpace(query.TargetID),
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "audit logs retrieved", Page{
		Content:  resp.AuditLogs,
		PageInfo: resp.PageInfo,
	})
}
