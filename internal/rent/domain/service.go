package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type GenerateRequest struct {
	OwnerID    snowflake.ID
	OfferID    snowflake.ID
	StartMonth string
	Months     int
	DueDay     *int
}

type GenerateResult struct {
	Created int               `json:"created"`
	Records []RentMonthRecord `json:"records"`
}

type MarkPaidRequest struct {
	OwnerID              snowflake.ID
	RecordID             snowflake.ID
	PaymentTransactionID *snowflake.ID
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	List(ctx context.Context, callerID, offerID snowflake.ID) ([]RentMonthRecord, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (RentMonthRecord, error)
}
