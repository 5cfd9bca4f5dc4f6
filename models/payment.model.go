package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// PaymentStatus defines the lifecycle state of a payment intent
type PaymentStatus string

const (
	PaymentStatusCreated  PaymentStatus = "CREATED"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusCaptured PaymentStatus = "CAPTURED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// PurchaseType tags what a payment intent buys
type PurchaseType string

const (
	PurchaseTypeCourse PurchaseType = "COURSE"
	PurchaseTypePlan   PurchaseType = "PLAN"
)

// ErrInvalidPurchase is returned when a purchase references neither a course nor a plan
var ErrInvalidPurchase = errors.New("purchase must reference exactly one of course or plan")

// Purchase is a tagged variant: either a course purchase or a subscription plan
// purchase. Construct via CoursePurchase or PlanPurchase so the invalid
// "neither" and "both" shapes cannot be built.
type Purchase struct {
	Type     PurchaseType
	CourseID uint
	PlanCode string
}

// CoursePurchase builds a purchase of a single course
func CoursePurchase(courseID uint) Purchase {
	return Purchase{Type: PurchaseTypeCourse, CourseID: courseID}
}

// PlanPurchase builds a purchase of a subscription plan
func PlanPurchase(planCode string) Purchase {
	return Purchase{Type: PurchaseTypePlan, PlanCode: planCode}
}

// Valid reports whether the purchase carries exactly one target
func (p Purchase) Valid() bool {
	switch p.Type {
	case PurchaseTypeCourse:
		return p.CourseID != 0 && p.PlanCode == ""
	case PurchaseTypePlan:
		return p.PlanCode != "" && p.CourseID == 0
	}
	return false
}

// PaymentIntent tracks one purchase attempt from checkout to settlement.
// Rows are never deleted; the table is the financial audit trail.
type PaymentIntent struct {
	gorm.Model
	UserID       uint          `json:"userId" gorm:"index;not null"`
	PurchaseType PurchaseType  `json:"purchaseType" gorm:"type:varchar(20);not null"`
	CourseID     uint          `json:"courseId" gorm:"default:0"` // set for COURSE purchases
	PlanCode     string        `json:"planCode" gorm:"type:varchar(50)"` // set for PLAN purchases
	Amount       int64         `json:"amount" gorm:"not null"` // minor units (paise)
	Currency     string        `json:"currency" gorm:"type:varchar(10);default:'INR'"`
	Status       PaymentStatus `json:"status" gorm:"type:varchar(20);default:'CREATED';index"`

	// Gateway details. OrderID is assigned at checkout and immutable;
	// PaymentID and Signature stay empty until capture.
	GatewayOrderID   string `json:"gatewayOrderId" gorm:"type:varchar(100);uniqueIndex;not null"`
	GatewayPaymentID string `json:"gatewayPaymentId" gorm:"type:varchar(100);index"`
	GatewaySignature string `json:"gatewaySignature" gorm:"type:varchar(255)"`

	// EntitlementPending marks a captured intent whose enrollment or plan
	// grant has not been confirmed yet. The reconciliation sweep repairs
	// any row left in this state.
	EntitlementPending bool `json:"entitlementPending" gorm:"default:false;index"`

	SettledAt *time.Time `json:"settledAt"`
	IsDeleted bool       `gorm:"default:false"`
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}

// NewPaymentIntent builds a CREATED intent for the given purchase. The gateway
// order ID must already be known (checkout calls the gateway first).
func NewPaymentIntent(userID uint, purchase Purchase, amount int64, currency, gatewayOrderID string) (*PaymentIntent, error) {
	if !purchase.Valid() {
		return nil, ErrInvalidPurchase
	}
	return &PaymentIntent{
		UserID:         userID,
		PurchaseType:   purchase.Type,
		CourseID:       purchase.CourseID,
		PlanCode:       purchase.PlanCode,
		Amount:         amount,
		Currency:       currency,
		Status:         PaymentStatusCreated,
		GatewayOrderID: gatewayOrderID,
	}, nil
}
