package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	"github.com/kasirhq/kasira/internal/clock"
	"github.com/kasirhq/kasira/internal/config"
	obsmetrics "github.com/kasirhq/kasira/internal/observability/metrics"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/kasirhq/kasira/pkg/db"
	"github.com/kasirhq/kasira/pkg/db/option"
	"github.com/kasirhq/kasira/pkg/db/pagination"
	"github.com/kasirhq/kasira/pkg/repository"
	"github.com/kasirhq/kasira/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Store    *config.StoreProfileHolder
	AuditSvc auditdomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

// Service is the transaction lifecycle manager. It orchestrates line-item
// assembly and payment reconciliation, persists the aggregate atomically and
// enforces the cancellation state machine.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store *config.StoreProfileHolder

	numbers  *NumberGenerator
	txnrepo  repository.Repository[txndomain.Transaction]
	auditSvc auditdomain.Service
	metrics  *obsmetrics.Metrics
}

func NewService(p ServiceParam) txndomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("transaction.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,

		numbers:  NewNumberGenerator(p.Clock),
		txnrepo:  repository.ProvideStore[txndomain.Transaction](p.DB),
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req txndomain.CreateTransactionRequest) (txndomain.Transaction, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return txndomain.Transaction{}, txndomain.ErrTenantRequired
	}

	branchID, err := snowflake.ParseString(strings.TrimSpace(req.BranchID))
	if err != nil || branchID == 0 {
		return txndomain.Transaction{}, txndomain.ErrBranchRequired
	}

	var customerID *snowflake.ID
	if req.CustomerID != nil && strings.TrimSpace(*req.CustomerID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.CustomerID))
		if err != nil {
			return txndomain.Transaction{}, txndomain.ErrInvalidCustomer
		}
		customerID = &parsed
	}

	txnType := req.Type
	if txnType == "" {
		txnType = txndomain.TransactionTypeSale
	}
	if !txndomain.ValidTransactionType(txnType) {
		return txndomain.Transaction{}, txndomain.ErrInvalidTransactionType
	}

	lines, err := assembleItems(req.Items)
	if err != nil {
		return txndomain.Transaction{}, err
	}

	total := lines.subtotal.Sub(lines.discount).Add(lines.tax)

	now := s.clock.Now()
	settled, err := reconcilePayments(req.Payments, total, now)
	if err != nil {
		return txndomain.Transaction{}, err
	}

	cashierID, _ := tenantctx.UserID(ctx)

	txn := txndomain.Transaction{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		BranchID:        branchID,
		CustomerID:      customerID,
		TransactionDate: now,
		Status:          settled.status,
		Type:            txnType,
		Subtotal:        lines.subtotal,
		DiscountAmount:  lines.discount,
		TaxAmount:       lines.tax,
		TotalAmount:     total,
		PaidAmount:      settled.paid,
		ChangeAmount:    settled.change,
		Notes:           strings.TrimSpace(req.Notes),
		CashierID:       cashierID,
		CashierName:     strings.TrimSpace(req.CashierName),
		Items:           lines.items,
		Payments:        settled.payments,
	}
	txn.CreatedBy = cashierID
	txn.UpdatedBy = cashierID

	for i := range txn.Items {
		txn.Items[i].ID = s.genID.Generate()
		txn.Items[i].TenantID = tenantID
		txn.Items[i].TransactionID = txn.ID
		txn.Items[i].CreatedBy = cashierID
		txn.Items[i].UpdatedBy = cashierID
	}
	for i := range txn.Payments {
		txn.Payments[i].ID = s.genID.Generate()
		txn.Payments[i].TenantID = tenantID
		txn.Payments[i].TransactionID = txn.ID
		txn.Payments[i].CreatedBy = cashierID
		txn.Payments[i].UpdatedBy = cashierID
	}

	prefix := s.store.Get().TransactionPrefix

	// One retry with a fresh suffix if two requests land on the same
	// second and random suffix.
	for attempt := 0; attempt < 2; attempt++ {
		txn.Number = s.numbers.Next(prefix)
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&txn).Error
		})
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return txndomain.Transaction{}, err
		}
	}
	if err != nil {
		return txndomain.Transaction{}, err
	}

	s.audit(ctx, "transaction.created", txn.ID, map[string]any{
		"number": txn.Number,
		"status": string(txn.Status),
		"total":  txn.TotalAmount.String(),
	})
	s.metrics.RecordTransactionCreated(ctx, string(txn.Status), string(txn.Type))

	s.log.Info("transaction created",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("number", txn.Number),
		zap.String("status", string(txn.Status)),
	)

	return txn, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (txndomain.Transaction, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return txndomain.Transaction{}, txndomain.ErrTenantRequired
	}

	txnID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return txndomain.Transaction{}, txndomain.ErrTransactionNotFound
	}

	current, err := s.txnrepo.FindOne(ctx, &txndomain.Transaction{ID: txnID, TenantID: tenantID})
	if err != nil {
		return txndomain.Transaction{}, err
	}
	if current == nil {
		return txndomain.Transaction{}, txndomain.ErrTransactionNotFound
	}

	switch current.Status {
	case txndomain.TransactionStatusCancelled:
		return txndomain.Transaction{}, txndomain.ErrAlreadyCancelled
	case txndomain.TransactionStatusRefunded:
		return txndomain.Transaction{}, txndomain.ErrNotCancellable
	}

	cashierID, _ := tenantctx.UserID(ctx)
	now := s.clock.Now()

	// Optimistic lock: the racing loser sees zero rows and reports a
	// conflict rather than overwriting.
	result := s.db.WithContext(ctx).Model(&txndomain.Transaction{}).
		Where("id = ? AND tenant_id = ? AND version = ?", txnID, tenantID, current.Version).
		Updates(map[string]any{
			"status":     txndomain.TransactionStatusCancelled,
			"updated_at": now,
			"updated_by": cashierID,
			"version":    current.Version + 1,
		})
	if result.Error != nil {
		return txndomain.Transaction{}, result.Error
	}
	if result.RowsAffected == 0 {
		return txndomain.Transaction{}, txndomain.ErrVersionConflict
	}

	s.audit(ctx, "transaction.cancelled", txnID, map[string]any{
		"number":          current.Number,
		"previous_status": string(current.Status),
	})
	s.metrics.RecordTransactionCancelled(ctx, string(current.Status))

	updated, err := s.txnrepo.FindOne(ctx, &txndomain.Transaction{ID: txnID, TenantID: tenantID},
		option.WithPreload("Items"),
		option.WithPreload("Payments"),
	)
	if err != nil {
		return txndomain.Transaction{}, err
	}
	if updated == nil {
		return txndomain.Transaction{}, txndomain.ErrTransactionNotFound
	}

	return *updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (txndomain.Transaction, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return txndomain.Transaction{}, txndomain.ErrTenantRequired
	}

	txnID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return txndomain.Transaction{}, txndomain.ErrTransactionNotFound
	}

	item, err := s.txnrepo.FindOne(ctx, &txndomain.Transaction{ID: txnID, TenantID: tenantID},
		option.WithPreload("Items"),
		option.WithPreload("Payments"),
	)
	if err != nil {
		return txndomain.Transaction{}, err
	}
	if item == nil {
		return txndomain.Transaction{}, txndomain.ErrTransactionNotFound
	}

	return *item, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (txndomain.Transaction, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return txndomain.Transaction{}, txndomain.ErrTenantRequired
	}

	number = strings.TrimSpace(number)
	if number == "" {
		return txndomain.Transaction{}, txndomain.ErrTransactionNotFound
	}

	item, err := s.txnrepo.FindOne(ctx, &txndomain.Transaction{Number: number, TenantID: tenantID},
		option.WithPreload("Items"),
		option.WithPreload("Payments"),
	)
	if err != nil {
		return txndomain.Transaction{}, err
	}
	if item == nil {
		return txndomain.Transaction{}, txndomain.ErrTransactionNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req txndomain.ListTransactionRequest) (txndomain.ListTransactionResponse, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return txndomain.ListTransactionResponse{}, txndomain.ErrTenantRequired
	}

	filter := &txndomain.Transaction{TenantID: tenantID}
	if req.Status != nil {
		filter.Status = *req.Status
	}
	if req.BranchID != nil {
		if branchID, err := snowflake.ParseString(strings.TrimSpace(*req.BranchID)); err == nil {
			filter.BranchID = branchID
		}
	}
	if req.CustomerID != nil {
		if customerID, err := snowflake.ParseString(strings.TrimSpace(*req.CustomerID)); err == nil {
			filter.CustomerID = &customerID
		}
	}

	conditions := []option.QueryOption{}
	if req.DateFrom != nil {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "transaction_date",
			Operator: option.GTE,
			Value:    req.DateFrom.UTC(),
		}))
	}
	if req.DateTo != nil {
		conditions = append(conditions, option.ApplyOperator(option.Condition{
			Field:    "transaction_date",
			Operator: option.LTE,
			Value:    req.DateTo.UTC(),
		}))
	}

	page := req.Pagination.Normalize()

	total, err := s.txnrepo.Count(ctx, filter, conditions...)
	if err != nil {
		return txndomain.ListTransactionResponse{}, err
	}

	options := append(conditions,
		option.WithSortBy(option.QuerySortBy{
			Field: "transaction_date",
			Desc:  true,
			Allow: map[string]bool{"transaction_date": true, "created_at": true},
		}),
		option.WithLimit(page.Size),
		option.WithOffset(page.Offset()),
	)

	items, err := s.txnrepo.Find(ctx, filter, options...)
	if err != nil {
		return txndomain.ListTransactionResponse{}, err
	}

	transactions := make([]txndomain.Transaction, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		transactions = append(transactions, *item)
	}

	return txndomain.ListTransactionResponse{
		PageInfo:     pagination.BuildPageInfo(page, total),
		Transactions: transactions,
	}, nil
}

func (s *Service) audit(ctx context.Context, action string, txnID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := txnID.String()
	if err := s.auditSvc.Record(ctx, action, "transaction", &targetID, metadata); err != nil {
		s.log.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}
