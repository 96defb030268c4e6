package server

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
)

type createOfferTerms struct {
	OfferRent           decimal.Decimal  `json:"offerRent"`
	JoiningDateEstimate string           `json:"joiningDateEstimate"`
	OfferAdvance        *decimal.Decimal `json:"offerAdvance"`
	OfferBookingAmount  *decimal.Decimal `json:"offerBookingAmount"`
	NeedsBikeParking    bool             `json:"needsBikeParking"`
	NeedsCarParking     bool             `json:"needsCarParking"`
	TenantType          string           `json:"tenantType"`
	AcceptsRules        bool             `json:"acceptsRules"`
	MatchPercent        *float64         `json:"matchPercent"`
}

type createOfferRequest struct {
	PropertyID flexID            `json:"propertyId" binding:"required"`
	Offer      *createOfferTerms `json:"offer" binding:"required"`
}

type requestAdvanceRequest struct {
	RequestedAdvanceAmount       looseField `json:"requestedAdvanceAmount"`
	RequestedAdvanceValidityDays looseField `json:"requestedAdvanceValidityDays"`
	ProposedMeetingTime          looseField `json:"proposedMeetingTime"`
	DesiredJoiningDate           looseField `json:"desiredJoiningDate"`
}

type setStatusRequest struct {
	Status looseField `json:"status"`
}

func (s *Server) CreateOffer(c *gin.Context) {
	tenantID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	terms := req.Offer
	offer, err := s.offerSvc.Create(c.Request.Context(), offerdomain.CreateOfferRequest{
		TenantID:            tenantID,
		PropertyID:          req.PropertyID.ID(),
		OfferRent:           terms.OfferRent,
		JoiningDateEstimate: terms.JoiningDateEstimate,
		OfferAdvance:        terms.OfferAdvance,
		OfferBookingAmount:  terms.OfferBookingAmount,
		NeedsBikeParking:    terms.NeedsBikeParking,
		NeedsCarParking:     terms.NeedsCarParking,
		TenantType:          terms.TenantType,
		AcceptsRules:        terms.AcceptsRules,
		MatchPercent:        terms.MatchPercent,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusCreated(c, gin.H{"offer": offer})
}

func (s *Server) GetOffer(c *gin.Context) {
	callerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	offer, err := s.offerSvc.Get(c.Request.Context(), callerID, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"offer": offer})
}

func (s *Server) ListReceivedOffers(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}

	offers, err := s.offerSvc.ListReceived(c.Request.Context(), ownerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"count": len(offers), "offers": offers})
}

func (s *Server) ListSentOffers(c *gin.Context) {
	tenantID, ok := requireCaller(c)
	if !ok {
		return
	}

	offers, err := s.offerSvc.ListSent(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"count": len(offers), "offers": offers})
}

func (s *Server) GetOfferHistory(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	propertyID, ok := parsePathID(c, "propertyId", offerdomain.ErrInvalidPropertyID)
	if !ok {
		return
	}
	tenantID, ok := parsePathID(c, "tenantId", offerdomain.ErrInvalidTenantID)
	if !ok {
		return
	}

	entries, err := s.offerSvc.History(c.Request.Context(), ownerID, propertyID, tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"offers": entries})
}

func (s *Server) RequestAdvance(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	// Body problems are reported by the service after the ownership check.
	var req requestAdvanceRequest
	malformed := !bindLoose(c, &req)

	offer, err := s.offerSvc.RequestAdvance(c.Request.Context(), offerdomain.RequestAdvanceRequest{
		OwnerID:             ownerID,
		OfferID:             offerID,
		Amount:              req.RequestedAdvanceAmount.text,
		ValidityDays:        req.RequestedAdvanceValidityDays.Ptr(),
		ProposedMeetingTime: optionalString(req.ProposedMeetingTime.Ptr()),
		DesiredJoiningDate:  optionalString(req.DesiredJoiningDate.Ptr()),
		MalformedBody:       malformed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"offer": offer})
}

func (s *Server) SetOfferStatus(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	var req setStatusRequest
	malformed := !bindLoose(c, &req)

	offer, err := s.offerSvc.SetStatus(c.Request.Context(), offerdomain.SetStatusRequest{
		OwnerID:       ownerID,
		OfferID:       offerID,
		Status:        req.Status.text,
		MalformedBody: malformed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"offer": offer})
}

func (s *Server) ConfirmMoveIn(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	offer, err := s.offerSvc.ConfirmMoveIn(c.Request.Context(), ownerID, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"offer": offer})
}
