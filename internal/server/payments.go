package server

import (
	"github.com/gin-gonic/gin"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	paymentdomain "github.com/smallbiznis/rentora/internal/payment/domain"
)

func (s *Server) CreatePaymentTransaction(c *gin.Context) {
	tenantID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	txn, err := s.paymentSvc.CreateTransaction(c.Request.Context(), tenantID, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusCreated(c, gin.H{"transaction": txn})
}

func (s *Server) ListPaymentTransactions(c *gin.Context) {
	callerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	txns, err := s.paymentSvc.ListForOffer(c.Request.Context(), callerID, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"count": len(txns), "transactions": txns})
}

func (s *Server) MarkPaymentPaid(c *gin.Context) {
	tenantID, ok := requireCaller(c)
	if !ok {
		return
	}
	transactionID, ok := parsePathID(c, "transactionId", paymentdomain.ErrInvalidTransactionID)
	if !ok {
		return
	}

	txn, err := s.paymentSvc.MarkPaid(c.Request.Context(), tenantID, transactionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"transaction": txn})
}

func (s *Server) VerifyPayment(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	transactionID, ok := parsePathID(c, "transactionId", paymentdomain.ErrInvalidTransactionID)
	if !ok {
		return
	}

	verification, err := s.paymentSvc.Verify(c.Request.Context(), ownerID, transactionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{
		"transaction": verification.Transaction,
		"offer":       verification.Offer,
	})
}

func (s *Server) ReconcileBooking(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	offer, err := s.paymentSvc.Reconcile(c.Request.Context(), ownerID, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"offer": offer})
}
