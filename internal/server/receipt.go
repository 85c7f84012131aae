package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GenerateReceipt(c *gin.Context) {
	receipt, err := s.receiptSvc.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, "receipt generated", receipt)
}

func (s *Server) GetReceiptByTransaction(c *gin.Context) {
	receipt, err := s.receiptSvc.GetByTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "receipt retrieved", receipt)
}

func (s *Server) GetReceiptByID(c *gin.Context) {
	receipt, err := s.receiptSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "receipt retrieved", receipt)
}

func (s *Server) PrintReceipt(c *gin.Context) {
	receipt, err := s.receiptSvc.Print(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, "receipt printed", receipt)
}

// GetReceiptContent serves the raw fixed-width body for thermal printers.
func (s *Server) GetReceiptContent(c *gin.Context) {
	content, err := s.receiptSvc.Content(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

func (s *Server) GetReceiptPDF(c *gin.Context) {
	reader, err := s.receiptSvc.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	document, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=receipt.pdf")
	c.Data(http.StatusOK, "application/pdf", document)
}
