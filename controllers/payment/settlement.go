package paymentController

import (
	"errors"
	"log"
	"time"

	"edumart/events"
	"edumart/gateway"
	"edumart/models"
	courseModels "edumart/models/course"

	"gorm.io/gorm"
)

var (
	// ErrUnknownOrder means the callback references an order this system never created
	ErrUnknownOrder = errors.New("unknown order")
	// ErrAlreadySettled means the intent already reached a terminal status. Replayed
	// callbacks get this instead of a second provisioning.
	ErrAlreadySettled = errors.New("payment already settled")
)

// SettlementOutcome classifies the result of a settle call
type SettlementOutcome string

const (
	OutcomeCaptured           SettlementOutcome = "CAPTURED"
	OutcomeVerificationFailed SettlementOutcome = "VERIFICATION_FAILED"
)

// SettlementResult is what a successful (or verification-failed) settle returns
type SettlementResult struct {
	Outcome    SettlementOutcome
	Intent     *models.PaymentIntent
	Enrollment *courseModels.Enrollment
}

// Settle confirms a payment-completion callback. It verifies the gateway
// signature, flips the intent CREATED -> CAPTURED (or FAILED) exactly once,
// and provisions the course enrollment inside the same transaction. The
// status flip is a conditional update on the current status, so concurrent
// duplicate callbacks race safely: one wins, the rest get ErrAlreadySettled.
func Settle(db *gorm.DB, secret, orderID, paymentID, signature string) (*SettlementResult, error) {
	var intent models.PaymentIntent
	if err := db.Where("gateway_order_id = ? AND is_deleted = false", orderID).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, err
	}

	if intent.Status != models.PaymentStatusCreated {
		return nil, ErrAlreadySettled
	}

	if !gateway.VerifySignature(orderID, paymentID, signature, secret) {
		// Full context stays in the log for fraud review; the caller only
		// ever sees a generic failure.
		log.Printf("[SETTLEMENT] Signature verification failed: order=%s payment=%s user=%d signature=%q",
			orderID, paymentID, intent.UserID, signature)

		res := db.Model(&models.PaymentIntent{}).
			Where("gateway_order_id = ? AND status = ?", orderID, models.PaymentStatusCreated).
			Updates(map[string]interface{}{
				"status":             models.PaymentStatusFailed,
				"gateway_payment_id": paymentID,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrAlreadySettled
		}

		intent.Status = models.PaymentStatusFailed
		intent.GatewayPaymentID = paymentID
		return &SettlementResult{Outcome: OutcomeVerificationFailed, Intent: &intent}, nil
	}

	now := time.Now()
	var enrollment *courseModels.Enrollment
	enrollmentCreated := false

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentIntent{}).
			Where("gateway_order_id = ? AND status = ?", orderID, models.PaymentStatusCreated).
			Updates(map[string]interface{}{
				"status":              models.PaymentStatusCaptured,
				"gateway_payment_id":  paymentID,
				"gateway_signature":   signature,
				"entitlement_pending": true,
				"settled_at":          now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race against a duplicate callback
			return ErrAlreadySettled
		}

		if intent.PurchaseType == models.PurchaseTypeCourse {
			e, created, err := ProvisionEnrollment(tx, intent.UserID, intent.CourseID)
			if err != nil {
				// Rolls back the capture too; the callback can be retried
				return err
			}
			enrollment = e
			enrollmentCreated = created

			if err := tx.Model(&models.PaymentIntent{}).
				Where("gateway_order_id = ?", orderID).
				Update("entitlement_pending", false).Error; err != nil {
				return err
			}
		}
		// Plan purchases keep entitlement_pending set until the grant
		// handler confirms the subscription.
		return nil
	})
	if err != nil {
		return nil, err
	}

	intent.Status = models.PaymentStatusCaptured
	intent.GatewayPaymentID = paymentID
	intent.GatewaySignature = signature
	intent.SettledAt = &now

	// Post-commit side effects go through the event bus; their failures
	// never unwind a settlement that already committed.
	events.Emit(events.PaymentCaptured{PaymentIntentID: intent.ID, UserID: intent.UserID})
	if enrollmentCreated {
		events.Emit(events.EnrollmentCreated{
			EnrollmentID: enrollment.ID,
			UserID:       intent.UserID,
			CourseID:     intent.CourseID,
		})
	}
	if intent.PurchaseType == models.PurchaseTypePlan {
		events.Emit(events.PlanActivated{
			PaymentIntentID: intent.ID,
			UserID:          intent.UserID,
			PlanCode:        intent.PlanCode,
		})
	}

	return &SettlementResult{Outcome: OutcomeCaptured, Intent: &intent, Enrollment: enrollment}, nil
}

// ProvisionEnrollment creates the (user, course) enrollment if it does not
// exist yet. The unique index on (user_id, course_id) backs up the lookup, so
// a concurrent duplicate create collapses to the existing row.
func ProvisionEnrollment(tx *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, bool, error) {
	var existing courseModels.Enrollment
	err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   courseModels.EnrollmentActive,
	}
	if err := tx.Create(&enrollment).Error; err != nil {
		// Unique index violation: someone else created it first
		if ferr := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; ferr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &enrollment, true, nil
}
