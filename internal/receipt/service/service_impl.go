package service

import (
	"context"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	"github.com/kasirhq/kasira/internal/cache"
	"github.com/kasirhq/kasira/internal/clock"
	"github.com/kasirhq/kasira/internal/config"
	obsmetrics "github.com/kasirhq/kasira/internal/observability/metrics"
	"github.com/kasirhq/kasira/internal/providers/pdf"
	"github.com/kasirhq/kasira/internal/ratelimit"
	receiptdomain "github.com/kasirhq/kasira/internal/receipt/domain"
	"github.com/kasirhq/kasira/internal/receipt/render"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	txnservice "github.com/kasirhq/kasira/internal/transaction/service"
	"github.com/kasirhq/kasira/pkg/db"
	"github.com/kasirhq/kasira/pkg/repository"
	"github.com/kasirhq/kasira/pkg/tenantctx"
	"github.com/shopspring/decimal"
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
	TxnSvc   txndomain.Service
	Renderer render.Renderer
	PDF      pdf.Provider              `optional:"true"`
	Guard    *ratelimit.Guard          `optional:"true"`
	Cache    cache.ReceiptContentCache `optional:"true"`
	AuditSvc auditdomain.Service       `optional:"true"`
	Metrics  *obsmetrics.Metrics       `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store *config.StoreProfileHolder

	numbers  *txnservice.NumberGenerator
	repo     repository.Repository[receiptdomain.Receipt]
	txnSvc   txndomain.Service
	renderer render.Renderer
	pdf      pdf.Provider
	guard    *ratelimit.Guard
	cache    cache.ReceiptContentCache
	auditSvc auditdomain.Service
	metrics  *obsmetrics.Metrics
}

func NewService(p ServiceParam) receiptdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("receipt.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,

		numbers:  txnservice.NewNumberGenerator(p.Clock),
		repo:     repository.ProvideStore[receiptdomain.Receipt](p.DB),
		txnSvc:   p.TxnSvc,
		renderer: p.Renderer,
		pdf:      p.PDF,
		guard:    p.Guard,
		cache:    p.Cache,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, transactionID string) (receiptdomain.Receipt, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return receiptdomain.Receipt{}, receiptdomain.ErrTenantRequired
	}

	txn, err := s.txnSvc.GetByID(ctx, transactionID)
	if err != nil {
		return receiptdomain.Receipt{}, err
	}
	if txn.Status == txndomain.TransactionStatusCancelled {
		return receiptdomain.Receipt{}, receiptdomain.ErrNotReceiptable
	}

	existing, err := s.repo.FindOne(ctx, &receiptdomain.Receipt{TenantID: tenantID, TransactionID: txn.ID})
	if err != nil {
		return receiptdomain.Receipt{}, err
	}
	if existing != nil {
		return receiptdomain.Receipt{}, receiptdomain.ErrReceiptExists
	}

	token, acquired, err := s.guard.TryLockReceiptIssue(ctx, tenantID.String(), txn.ID.String())
	if err != nil {
		s.log.Warn("receipt issue lock unavailable", zap.Error(err))
	} else if !acquired {
		return receiptdomain.Receipt{}, receiptdomain.ErrIssueContended
	} else {
		defer func() {
			if err := s.guard.ReleaseReceiptIssue(ctx, tenantID.String(), txn.ID.String(), token); err != nil {
				s.log.Warn("receipt issue lock release failed", zap.Error(err))
			}
		}()
	}

	profile := s.store.Get()
	issuedAt := s.clock.Now()

	receipt := receiptdomain.Receipt{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		TransactionID: txn.ID,
		IssuedAt:      issuedAt,
	}
	if userID, ok := tenantctx.UserID(ctx); ok {
		receipt.CreatedBy = userID
		receipt.UpdatedBy = userID
	}

	for attempt := 0; attempt < 2; attempt++ {
		receipt.Number = s.numbers.Next(profile.ReceiptPrefix)

		content, renderErr := s.renderer.RenderText(render.RenderInput{
			Store:       profile,
			Transaction: txn,
			Number:      receipt.Number,
			IssuedAt:    issuedAt,
		})
		if renderErr != nil {
			return receiptdomain.Receipt{}, renderErr
		}
		receipt.Content = content

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&receipt).Error
		})
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return receiptdomain.Receipt{}, err
		}
	}
	if err != nil {
		// Both attempts hit a constraint; the concurrent winner owns the
		// transaction's receipt now.
		return receiptdomain.Receipt{}, receiptdomain.ErrReceiptExists
	}

	if s.cache != nil {
		s.cache.Set(tenantID, receipt.ID, receipt.Content)
	}

	s.audit(ctx, "receipt.generated", receipt.ID, map[string]any{
		"number":      receipt.Number,
		"transaction": txn.Number,
	})
	s.metrics.RecordReceiptIssued(ctx)

	s.log.Info("receipt issued",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("number", receipt.Number),
		zap.String("transaction_id", txn.ID.String()),
	)

	return receipt, nil
}

func (s *Service) Print(ctx context.Context, id string) (receiptdomain.Receipt, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return receiptdomain.Receipt{}, receiptdomain.ErrTenantRequired
	}

	receipt, err := s.findByID(ctx, tenantID, id)
	if err != nil {
		return receiptdomain.Receipt{}, err
	}

	now := s.clock.Now()
	result := s.db.WithContext(ctx).Model(&receiptdomain.Receipt{}).
		Where("id = ? AND tenant_id = ?", receipt.ID, tenantID).
		Updates(map[string]any{
			"print_count":     gorm.Expr("print_count + 1"),
			"last_printed_at": now,
			"updated_at":      now,
		})
	if result.Error != nil {
		return receiptdomain.Receipt{}, result.Error
	}
	if result.RowsAffected == 0 {
		return receiptdomain.Receipt{}, receiptdomain.ErrReceiptNotFound
	}

	receipt.PrintCount++
	receipt.LastPrintedAt = &now
	receipt.UpdatedAt = now

	if s.cache != nil {
		s.cache.Set(tenantID, receipt.ID, receipt.Content)
	}

	s.audit(ctx, "receipt.printed", receipt.ID, map[string]any{
		"number":      receipt.Number,
		"print_count": receipt.PrintCount,
	})
	s.metrics.RecordReceiptPrinted(ctx)

	return *receipt, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (receiptdomain.Receipt, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return receiptdomain.Receipt{}, receiptdomain.ErrTenantRequired
	}

	receipt, err := s.findByID(ctx, tenantID, id)
	if err != nil {
		return receiptdomain.Receipt{}, err
	}
	return *receipt, nil
}

func (s *Service) GetByTransaction(ctx context.Context, transactionID string) (receiptdomain.Receipt, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return receiptdomain.Receipt{}, receiptdomain.ErrTenantRequired
	}

	txnID, err := snowflake.ParseString(strings.TrimSpace(transactionID))
	if err != nil {
		return receiptdomain.Receipt{}, receiptdomain.ErrReceiptNotFound
	}

	receipt, err := s.repo.FindOne(ctx, &receiptdomain.Receipt{TenantID: tenantID, TransactionID: txnID})
	if err != nil {
		return receiptdomain.Receipt{}, err
	}
	if receipt == nil {
		return receiptdomain.Receipt{}, receiptdomain.ErrReceiptNotFound
	}
	return *receipt, nil
}

// Content serves the stored receipt body, preferring the in-process cache.
func (s *Service) Content(ctx context.Context, id string) (string, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return "", receiptdomain.ErrTenantRequired
	}

	if s.cache != nil {
		if receiptID, err := snowflake.ParseString(strings.TrimSpace(id)); err == nil {
			if content, hit := s.cache.Get(tenantID, receiptID); hit {
				return content, nil
			}
		}
	}

	receipt, err := s.findByID(ctx, tenantID, id)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		s.cache.Set(tenantID, receipt.ID, receipt.Content)
	}
	return receipt.Content, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) (io.Reader, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return nil, receiptdomain.ErrTenantRequired
	}
	if s.pdf == nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}

	receipt, err := s.findByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	txn, err := s.txnSvc.GetByID(ctx, receipt.TransactionID.String())
	if err != nil {
		return nil, err
	}

	profile := s.store.Get()
	money := func(amount decimal.Decimal) string {
		value := amount.StringFixed(2)
		if currency := strings.TrimSpace(profile.Currency); currency != "" {
			return currency + " " + value
		}
		return value
	}

	data := pdf.ReceiptData{
		StoreName:    profile.StoreName,
		AddressLine1: profile.AddressLine1,
		AddressLine2: profile.AddressLine2,
		Phone:        profile.Phone,
		FooterNote:   profile.FooterNote,

		Number:            receipt.Number,
		TransactionNumber: txn.Number,
		IssuedAt:          receipt.IssuedAt.UTC().Format("2006-01-02 15:04:05"),
		CashierName:       txn.CashierName,

		Subtotal: money(txn.Subtotal),
		Tax:      money(txn.TaxAmount),
		Total:    money(txn.TotalAmount),
		Paid:     money(txn.PaidAmount),
		Change:   money(txn.ChangeAmount),
	}
	if !txn.DiscountAmount.IsZero() {
		data.Discount = money(txn.DiscountAmount)
	}
	for _, item := range txn.Items {
		data.Items = append(data.Items, pdf.ReceiptItem{
			Description: item.ProductName,
			Qty:         item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			Amount:      money(item.Subtotal),
		})
	}
	for _, payment := range txn.Payments {
		data.Payments = append(data.Payments, pdf.ReceiptPayment{
			Method: string(payment.Method),
			Amount: money(payment.Amount),
		})
	}

	return s.pdf.GenerateReceipt(ctx, data)
}

func (s *Service) findByID(ctx context.Context, tenantID snowflake.ID, id string) (*receiptdomain.Receipt, error) {
	receiptID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}

	receipt, err := s.repo.FindOne(ctx, &receiptdomain.Receipt{ID: receiptID, TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, receiptdomain.ErrReceiptNotFound
	}
	return receipt, nil
}

func (s *Service) audit(ctx context.Context, action string, receiptID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := receiptID.String()
	if err := s.auditSvc.Record(ctx, action, "receipt", &targetID, metadata); err != nil {
		s.log.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}
