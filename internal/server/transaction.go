package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"github.com/kasirhq/kasira/pkg/db/pagination"
)

func (s *Server) CreateTransaction(c *gin.Context) {
	var req txndomain.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	txn, err := s.txnSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "transaction created", txn)
}

func (s *Server) GetTransactionByID(c *gin.Context) {
	txn, err := s.txnSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "transaction retrieved", txn)
}

func (s *Server) GetTransactionByNumber(c *gin.Context) {
	txn, err := s.txnSvc.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "transaction retrieved", txn)
}

func (s *Server) CancelTransaction(c *gin.Context) {
	txn, err := s.txnSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "transaction cancelled", txn)
}

type listTransactionsQuery struct {
	pagination.Pagination
	BranchID   string `form:"branch_id"`
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	req := txndomain.ListTransactionRequest{Pagination: query.Pagination}

	if v := strings.TrimSpace(query.BranchID); v != "" {
		req.BranchID = &v
	}
	if v := strings.TrimSpace(query.CustomerID); v != "" {
		req.CustomerID = &v
	}
	if v := strings.TrimSpace(query.Status); v != "" {
		status := txndomain.TransactionStatus(strings.ToUpper(v))
		req.Status = &status
	}
	if v := strings.TrimSpace(query.DateFrom); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.DateFrom = &parsed
	}
	if v := strings.TrimSpace(query.DateTo); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.DateTo = &parsed
	}

	resp, err := s.txnSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "transactions retrieved", Page{
		Content:  resp.Transactions,
		PageInfo: resp.PageInfo,
	})
}
