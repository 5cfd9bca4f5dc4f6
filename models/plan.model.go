package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus defines the state of a plan subscription
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "ACTIVE"
	SubscriptionExpired SubscriptionStatus = "EXPIRED"
)

// Plan is one entry in the fixed subscription catalog
type Plan struct {
	Code         string
	PriceAmount  int64 // minor units
	Currency     string
	DurationDays int
}

// Plans is the subscription catalog. Price and duration live on the same
// entry, so a code cannot be sold without a duration or granted without a
// price. What a plan unlocks beyond the subscription record lives outside
// the settlement core.
var Plans = map[string]Plan{
	"MONTHLY":   {Code: "MONTHLY", PriceAmount: 99900, Currency: "INR", DurationDays: 30},
	"QUARTERLY": {Code: "QUARTERLY", PriceAmount: 249900, Currency: "INR", DurationDays: 90},
	"YEARLY":    {Code: "YEARLY", PriceAmount: 899900, Currency: "INR", DurationDays: 365},
}

// PlanByCode looks up a plan in the catalog
func PlanByCode(code string) (Plan, bool) {
	p, ok := Plans[code]
	return p, ok
}

// PlanSubscription is the entitlement granted by a captured plan purchase
type PlanSubscription struct {
	gorm.Model
	UserID          uint               `json:"userId" gorm:"index;not null"`
	PlanCode        string             `json:"planCode" gorm:"type:varchar(50);not null"`
	PaymentIntentID uint               `json:"paymentIntentId" gorm:"uniqueIndex;not null"`
	Status          SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE';index"`
	StartedAt       time.Time          `json:"startedAt"`
	ExpiresAt       time.Time          `json:"expiresAt" gorm:"index"`
	IsDeleted       bool               `gorm:"default:false"`
}

func (PlanSubscription) TableName() string {
	return "plan_subscriptions"
}
