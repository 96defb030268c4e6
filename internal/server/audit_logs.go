package server

import (
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/rentora/internal/audit/domain"
	offerdomain "github.com/smallbiznis/rentora/internal/offer/domain"
)

// ListOfferAuditLogs returns the transition trail of an offer to its owner.
func (s *Server) ListOfferAuditLogs(c *gin.Context) {
	ownerID, ok := requireCaller(c)
	if !ok {
		return
	}
	offerID, ok := parsePathID(c, "offerId", offerdomain.ErrInvalidID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	offer, err := s.offerSvc.Get(ctx, ownerID, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if offer.OwnerID != ownerID {
		AbortWithError(c, offerdomain.ErrForbidden)
		return
	}

	logs, err := s.auditSvc.ListForTarget(ctx, auditdomain.TargetTypeOffer, offerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statusOK(c, gin.H{"count": len(logs), "logs": logs})
}
