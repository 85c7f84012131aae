package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	auditrepository "github.com/kasirhq/kasira/internal/audit/repository"
	"github.com/kasirhq/kasira/internal/auditcontext"
	"github.com/kasirhq/kasira/internal/clock"
	"github.com/kasirhq/kasira/pkg/db/pagination"
	"github.com/kasirhq/kasira/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuditService(t *testing.T) (auditdomain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))

	node, _ := snowflake.NewNode(1)
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  auditrepository.Provide(),
	})
	return svc, conn, node, clk
}

func TestAuditService_Record(t *testing.T) {
	svc, conn, node, clk := newAuditService(t)

	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)
	ctx = tenantctx.WithUserID(ctx, "cashier-1")
	ctx = auditcontext.WithRequestID(ctx, "req-123")

	targetID := "some-transaction"
	err := svc.Record(ctx, "transaction.created", "transaction", &targetID, map[string]any{
		"number": "TRX001",
	})
	assert.NoError(t, err)

	var entry auditdomain.AuditLog
	assert.NoError(t, conn.First(&entry).Error)
	assert.Equal(t, tenantID, entry.TenantID)
	assert.Equal(t, "user", entry.ActorType)
	assert.Equal(t, "cashier-1", *entry.ActorID)
	assert.Equal(t, "transaction.created", entry.Action)
	assert.Equal(t, "transaction", entry.TargetType)
	assert.Equal(t, "some-transaction", *entry.TargetID)
	assert.Equal(t, "TRX001", entry.Metadata["number"])
	assert.Equal(t, "req-123", entry.Metadata["request_id"])
	assert.WithinDuration(t, clk.Now(), entry.CreatedAt, time.Second)
}

func TestAuditService_Record_Validation(t *testing.T) {
	svc, _, node, _ := newAuditService(t)

	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	assert.ErrorIs(t, svc.Record(ctx, "  ", "transaction", nil, nil), auditdomain.ErrInvalidAction)

	err := svc.Record(context.Background(), "transaction.created", "transaction", nil, nil)
	assert.ErrorIs(t, err, auditdomain.ErrTenantRequired)
}

func TestAuditService_List(t *testing.T) {
	svc, _, node, _ := newAuditService(t)

	tenantID := node.Generate()
	ctx := tenantctx.WithTenantID(context.Background(), tenantID)

	for i := 0; i < 3; i++ {
		assert.NoError(t, svc.Record(ctx, "transaction.created", "transaction", nil, nil))
	}
	assert.NoError(t, svc.Record(ctx, "receipt.printed", "receipt", nil, nil))

	// Another tenant's entries must not leak into the listing.
	otherCtx := tenantctx.WithTenantID(context.Background(), node.Generate())
	assert.NoError(t, svc.Record(otherCtx, "transaction.created", "transaction", nil, nil))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{Page: 0, Size: 10},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), resp.TotalElements)

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{Page: 0, Size: 10},
		Action:     "receipt.printed",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalElements)
	assert.Equal(t, "receipt.printed", resp.AuditLogs[0].Action)
}

func TestAuditService_List_InvalidTimeRange(t *testing.T) {
	svc, _, node, _ := newAuditService(t)

	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{Page: 0, Size: 10},
		StartAt:    &start,
		EndAt:      &end,
	})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
