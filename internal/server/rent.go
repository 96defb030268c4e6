package server

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
	rentdomain "github.com/smallbiznis/rentora/internal/rent/domain"
)

type generateRentScheduleRequest struct {
	StartMonth string `json:"startMonth" binding:"required"`
	Months     int    `json:"months" binding:"required"`
	DueDay     *int   `json:"dueDay"`
}

type markRentPaidRequest struct {
	PaymentTransactionID *flexID `json:"paymentTransactionId"`
}

func (s *Server) GenerateRentSchedule(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	var req generateRentScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	result, err := s.rentSvc.Generate(c.Request.Context(), rentdomain.GenerateRequest{
		OwnerID:    ownerID,
		OfferID:    offerID,
		StartMonth: req.StartMonth,
		Months:     req.Months,
		DueDay:     req.DueDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusCreated(c, gin.H{
		"created": result.Created,
		"count":   len(result.Records),
		"records": result.Records,
	})
}

func (s *Server) ListRentRecords(c *gin.Context) {
	callerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	records, err := s.rentSvc.List(c.Request.Context(), callerID, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"count": len(records), "records": records})
}

func (s *Server) MarkRentRecordPaid(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	recordID, ok := parsePathID(c, "recordId", rentdomain.ErrInvalidRecordID)
	if !ok {
		return
	}

	// The body is optional.
	var req markRentPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, bindError(err))
		return
	}

	markReq := rentdomain.MarkPaidRequest{OwnerID: ownerID, RecordID: recordID}
	if req.PaymentTransactionID != nil && *req.PaymentTransactionID != 0 {
		txnID := req.PaymentTransactionID.ID()
		markReq.PaymentTransactionID = &txnID
	}

	record, err := s.rentSvc.MarkPaid(c.Request.Context(), markReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"record": record})
}
