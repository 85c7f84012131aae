package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	"github.com/kasirhq/kasira/internal/auditcontext"
	"github.com/kasirhq/kasira/internal/clock"
	"github.com/kasirhq/kasira/pkg/db/pagination"
	"github.com/kasirhq/kasira/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return auditdomain.ErrTenantRequired
	}

	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := map[string]any{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := auditcontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	actorType := "system"
	var actorID *string
	if userID, ok := tenantctx.UserID(ctx); ok {
		actorType = "user"
		actorID = &userID
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   normalizePointer(targetID),
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now(),
	}
	if ipAddress := auditcontext.IPAddressFromContext(ctx); ipAddress != "" {
		entry.IPAddress = &ipAddress
	}
	if userAgent := auditcontext.UserAgentFromContext(ctx); userAgent != "" {
		entry.UserAgent = &userAgent
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrTenantRequired
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	page := req.Pagination.Normalize()
	logs, total, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		TenantID:   tenantID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Limit:      page.Size,
		Offset:     page.Offset(),
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	entries := make([]auditdomain.AuditLog, 0, len(logs))
	for _, entry := range logs {
		if entry == nil {
			continue
		}
		entries = append(entries, *entry)
	}

	return auditdomain.ListAuditLogResponse{
		PageInfo:  pagination.BuildPageInfo(page, total),
		AuditLogs: entries,
	}, nil
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
