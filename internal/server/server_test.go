package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	auditrepository "github.com/kasirhq/kasira/internal/audit/repository"
	obscontext "github.com/kasirhq/kasira/internal/observability/context"
	auditservice "github.com/kasirhq/kasira/internal/audit/service"
	"github.com/kasirhq/kasira/internal/auth"
	"github.com/kasirhq/kasira/internal/clock"
	"github.com/kasirhq/kasira/internal/config"
	"github.com/kasirhq/kasira/internal/providers/pdf"
	receiptdomain "github.com/kasirhq/kasira/internal/receipt/domain"
	"github.com/kasirhq/kasira/internal/receipt/render"
	receiptservice "github.com/kasirhq/kasira/internal/receipt/service"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	txnservice "github.com/kasirhq/kasira/internal/transaction/service"
	"github.com/kasirhq/kasira/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serverEnv struct {
	srv    *Server
	node   *snowflake.Node
	tokens *auth.Manager
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&txndomain.Transaction{},
		&txndomain.TransactionItem{},
		&txndomain.Payment{},
		&receiptdomain.Receipt{},
		&auditdomain.AuditLog{},
	))

	node, _ := snowflake.NewNode(1)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC))
	store := config.NewStaticStoreProfileHolder(config.DefaultStoreProfile())

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  auditrepository.Provide(),
	})

	txnSvc := txnservice.NewService(txnservice.ServiceParam{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clk,
		Store:    store,
		AuditSvc: auditSvc,
	})

	receiptSvc := receiptservice.NewService(receiptservice.ServiceParam{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clk,
		Store:    store,
		TxnSvc:   txnSvc,
		Renderer: render.NewRenderer(),
		PDF:      pdf.NewProvider(),
		AuditSvc: auditSvc,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	tokens := auth.NewManagerWithSecret("test-secret")

	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{AppName: "kasira", Environment: "test"},
		Log:        log,
		GenID:      node,
		Tokens:     tokens,
		TxnSvc:     txnSvc,
		ReceiptSvc: receiptSvc,
		AuditSvc:   auditSvc,
	})

	return &serverEnv{srv: srv, node: node, tokens: tokens}
}

func (e *serverEnv) token(t *testing.T, tenantID snowflake.ID) string {
	t.Helper()
	token, err := e.tokens.Generate(tenantID.String(), "cashier-1", time.Minute)
	assert.NoError(t, err)
	return token
}

func (e *serverEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func createBody() map[string]any {
	return map[string]any{
		"branch_id": "7000000001",
		"items": []map[string]any{
			{
				"product_id":   "8000000001",
				"product_name": "Americano",
				"quantity":     2,
				"unit_price":   "10.00",
				"tax_rate":     "10",
			},
		},
		"payments": []map[string]any{
			{"method": "CASH", "amount": "22.00"},
		},
	}
}

func TestServer_RequiresAuth(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(t, http.MethodPost, "/api/transactions", "", createBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "unauthorized", resp.ErrorCode)
}

func TestServer_AuthBindsTenantAndActor(t *testing.T) {
	env := newServerEnv(t)
	tenantID := env.node.Generate()
	token := env.token(t, tenantID)

	var gotTenant snowflake.ID
	var actorType, actorID string
	env.srv.Engine().GET("/whoami", env.srv.AuthRequired(), func(c *gin.Context) {
		gotTenant, _ = tenantctx.TenantID(c.Request.Context())
		actorType, actorID = obscontext.ActorFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	rec := env.do(t, http.MethodGet, "/whoami", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, tenantID, gotTenant)
	assert.Equal(t, "user", actorType)
	assert.Equal(t, "cashier-1", actorID)
}

func TestServer_CreateTransaction(t *testing.T) {
	env := newServerEnv(t)
	token := env.token(t, env.node.Generate())

	rec := env.do(t, http.MethodPost, "/api/transactions", token, createBody())
	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "transaction created", resp.Message)

	data, ok := resp.Data.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Equal(t, "22", data["total_amount"])
}

func TestServer_CreateTransaction_Validation(t *testing.T) {
	env := newServerEnv(t)
	token := env.token(t, env.node.Generate())

	body := createBody()
	body["items"] = []map[string]any{}

	rec := env.do(t, http.MethodPost, "/api/transactions", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "transaction_items_required", resp.ErrorCode)
}

func TestServer_CancelTwiceConflicts(t *testing.T) {
	env := newServerEnv(t)
	token := env.token(t, env.node.Generate())

	created := decodeEnvelope(t, env.do(t, http.MethodPost, "/api/transactions", token, createBody()))
	id := created.Data.(map[string]any)["id"].(string)

	rec := env.do(t, http.MethodPost, "/api/transactions/"+id+"/cancel", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/transactions/"+id+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "transaction_already_cancelled", decodeEnvelope(t, rec).ErrorCode)
}

func TestServer_TenantMismatchIsNotFound(t *testing.T) {
	env := newServerEnv(t)
	owner := env.token(t, env.node.Generate())
	intruder := env.token(t, env.node.Generate())

	created := decodeEnvelope(t, env.do(t, http.MethodPost, "/api/transactions", owner, createBody()))
	id := created.Data.(map[string]any)["id"].(string)

	rec := env.do(t, http.MethodGet, "/api/transactions/"+id, intruder, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ReceiptFlow(t *testing.T) {
	env := newServerEnv(t)
	token := env.token(t, env.node.Generate())

	created := decodeEnvelope(t, env.do(t, http.MethodPost, "/api/transactions", token, createBody()))
	id := created.Data.(map[string]any)["id"].(string)

	rec := env.do(t, http.MethodPost, "/api/transactions/"+id+"/receipt", token, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	receipt := decodeEnvelope(t, rec).Data.(map[string]any)
	receiptID := receipt["id"].(string)

	// Second generation conflicts.
	rec = env.do(t, http.MethodPost, "/api/transactions/"+id+"/receipt", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "receipt_already_exists", decodeEnvelope(t, rec).ErrorCode)

	rec = env.do(t, http.MethodPost, "/api/receipts/"+receiptID+"/print", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	printed := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, float64(1), printed["print_count"])

	rec = env.do(t, http.MethodGet, "/api/receipts/"+receiptID+"/content", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Americano")
}

func TestServer_ListTransactions(t *testing.T) {
	env := newServerEnv(t)
	token := env.token(t, env.node.Generate())

	rec := env.do(t, http.MethodPost, "/api/transactions", token, createBody())
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/transactions?page=0&size=10", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	page := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), page["page_info"].(map[string]any)["total_elements"])
}
