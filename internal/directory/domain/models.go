package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Property is the read-only projection of a listing owned by the catalogue.
type Property struct {
	ID       snowflake.ID    `gorm:"primaryKey" json:"id"`
	OwnerID  snowflake.ID    `gorm:"not null;index" json:"ownerId"`
	Title    string          `json:"title"`
	Location string          `json:"location"`
	Rent     decimal.Decimal `gorm:"type:numeric(12,2)" json:"rent"`
}

func (Property) TableName() string { return "properties" }

// UserProfile is the public summary of a marketplace user.
type UserProfile struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	AvatarURL string       `gorm:"column:avatar_url" json:"avatarUrl"`
}

func (UserProfile) TableName() string { return "users" }
