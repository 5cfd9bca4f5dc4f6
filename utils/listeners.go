package utils

import (
	"encoding/json"
	"log"
	"time"

	"edumart/database"
	"edumart/events"
	"edumart/models"
	courseModels "edumart/models/course"

	"gorm.io/gorm"
)

// RegisterEventHandlers wires the post-commit side effects onto the event bus.
// Every handler logs its own failures; none of them can fail a settlement or
// a quiz submission that already committed.
func RegisterEventHandlers() {
	events.Bus.Register(func(event interface{}) {
		db := database.Database.Db

		switch e := event.(type) {
		case events.EnrollmentCreated:
			onEnrollmentCreated(db, e)
		case events.PaymentCaptured:
			onPaymentCaptured(db, e)
		case events.CourseCompleted:
			onCourseCompleted(db, e)
		case events.PlanActivated:
			if err := GrantPlanSubscription(db, e.PaymentIntentID); err != nil {
				log.Printf("[EVENTS] Plan grant failed for intent %d: %v", e.PaymentIntentID, err)
			}
		case events.UserRegistered:
			var user models.User
			if err := db.Where("id = ?", e.UserID).First(&user).Error; err != nil {
				log.Printf("[EVENTS] Welcome email skipped, user %d not found", e.UserID)
				return
			}
			SendWelcomeEmail(user.Name, user.Email)
		}
	})
}

// onEnrollmentCreated maintains the course enrollment counter. Keeping the
// increment here means it can be retried independently of provisioning.
func onEnrollmentCreated(db *gorm.DB, e events.EnrollmentCreated) {
	if err := db.Model(&courseModels.Course{}).
		Where("id = ?", e.CourseID).
		Update("enrollment_count", gorm.Expr("enrollment_count + 1")).Error; err != nil {
		log.Printf("[EVENTS] Enrollment counter update failed for course %d: %v", e.CourseID, err)
	}
}

func onPaymentCaptured(db *gorm.DB, e events.PaymentCaptured) {
	var intent models.PaymentIntent
	if err := db.Where("id = ?", e.PaymentIntentID).First(&intent).Error; err != nil {
		log.Printf("[EVENTS] Invoice skipped, intent %d not found", e.PaymentIntentID)
		return
	}

	var user models.User
	if err := db.Where("id = ?", intent.UserID).First(&user).Error; err != nil {
		log.Printf("[EVENTS] Invoice skipped, user %d not found", intent.UserID)
		return
	}

	itemName := intent.PlanCode + " plan"
	if intent.PurchaseType == models.PurchaseTypeCourse {
		var course courseModels.Course
		if err := db.Where("id = ?", intent.CourseID).First(&course).Error; err == nil {
			itemName = course.Title
		} else {
			itemName = "Course"
		}
	}

	invoice := BuildInvoice(&intent, &user, itemName)
	payload, _ := json.Marshal(invoice)
	// Handed to the external invoice renderer; the payload log doubles as
	// the audit trail until the renderer confirms
	log.Printf("[INVOICE] %s", string(payload))

	SendPaymentSuccessEmail(user.Name, user.Email, itemName, intent.GatewayOrderID, intent.Amount, intent.Currency)
}

func onCourseCompleted(db *gorm.DB, e events.CourseCompleted) {
	var user models.User
	if err := db.Where("id = ?", e.UserID).First(&user).Error; err != nil {
		log.Printf("[EVENTS] Certificate email skipped, user %d not found", e.UserID)
		return
	}

	var course courseModels.Course
	if err := db.Where("id = ?", e.CourseID).First(&course).Error; err != nil {
		log.Printf("[EVENTS] Certificate email skipped, course %d not found", e.CourseID)
		return
	}

	SendCertificateEmail(user.Name, user.Email, course.Title, e.CertificateNumber)
}

// GrantPlanSubscription creates the subscription entitlement for a captured
// plan purchase and clears the intent's reconciliation marker. Idempotent:
// the unique index on payment_intent_id makes a duplicate grant a no-op.
func GrantPlanSubscription(db *gorm.DB, paymentIntentID uint) error {
	var intent models.PaymentIntent
	if err := db.Where("id = ? AND status = ?", paymentIntentID, models.PaymentStatusCaptured).First(&intent).Error; err != nil {
		return err
	}
	if intent.PurchaseType != models.PurchaseTypePlan {
		return nil
	}

	plan, ok := models.PlanByCode(intent.PlanCode)
	if !ok {
		log.Printf("[PLANS] Unknown plan code %q on intent %d", intent.PlanCode, intent.ID)
		plan = models.Plans["MONTHLY"]
	}

	now := time.Now()
	sub := models.PlanSubscription{
		UserID:          intent.UserID,
		PlanCode:        intent.PlanCode,
		PaymentIntentID: intent.ID,
		Status:          models.SubscriptionActive,
		StartedAt:       now,
		ExpiresAt:       now.AddDate(0, 0, plan.DurationDays),
	}

	if err := db.Create(&sub).Error; err != nil {
		// Already granted by a concurrent path
		var existing models.PlanSubscription
		if ferr := db.Where("payment_intent_id = ?", intent.ID).First(&existing).Error; ferr != nil {
			return err
		}
	}

	return db.Model(&models.PaymentIntent{}).
		Where("id = ?", intent.ID).
		Update("entitlement_pending", false).Error
}
