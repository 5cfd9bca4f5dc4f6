package utils

import (
	"log"
	"time"

	paymentController "edumart/controllers/payment"
	"edumart/database"
	"edumart/events"
	"edumart/models"

	"github.com/robfig/cron/v3"
)

// InitializeReconciliationScheduler starts the background sweeps: the
// entitlement repair job and the daily subscription-expiry pass.
func InitializeReconciliationScheduler() {
	log.Println("[RECONCILIATION] Initializing reconciliation scheduler...")

	c := cron.New()

	// Captured money with a missing entitlement is the dangerous state;
	// sweep for it frequently
	c.AddFunc("*/5 * * * *", func() {
		RepairPendingEntitlements()
	})

	// Expire lapsed plan subscriptions daily at 9 AM
	c.AddFunc("0 9 * * *", func() {
		ExpireSubscriptions()
	})

	c.Start()
	log.Println("[RECONCILIATION] Scheduler started - repair every 5m, expiry daily at 9 AM")
}

// RepairPendingEntitlements finds captured intents whose entitlement was never
// confirmed and provisions it. Safe to run concurrently with settlement:
// enrollment provisioning and plan grants are both idempotent.
func RepairPendingEntitlements() {
	db := database.Database.Db

	var pending []models.PaymentIntent
	if err := db.
		Where("status = ? AND entitlement_pending = ? AND is_deleted = false", models.PaymentStatusCaptured, true).
		Where("updated_at < ?", time.Now().Add(-2*time.Minute)).
		Limit(100).
		Find(&pending).Error; err != nil {
		log.Printf("[RECONCILIATION] Error fetching pending intents: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}
	log.Printf("[RECONCILIATION] Found %d captured intents with pending entitlements", len(pending))

	for _, intent := range pending {
		switch intent.PurchaseType {
		case models.PurchaseTypeCourse:
			enrollment, created, err := paymentController.ProvisionEnrollment(db, intent.UserID, intent.CourseID)
			if err != nil {
				log.Printf("[RECONCILIATION] Repair failed for intent %d: %v", intent.ID, err)
				continue
			}
			if err := db.Model(&models.PaymentIntent{}).
				Where("id = ?", intent.ID).
				Update("entitlement_pending", false).Error; err != nil {
				log.Printf("[RECONCILIATION] Failed to clear marker on intent %d: %v", intent.ID, err)
				continue
			}
			if created {
				log.Printf("[RECONCILIATION] Repaired missing enrollment for intent %d (user %d, course %d)",
					intent.ID, intent.UserID, intent.CourseID)
				events.Emit(events.EnrollmentCreated{
					EnrollmentID: enrollment.ID,
					UserID:       intent.UserID,
					CourseID:     intent.CourseID,
				})
			}
		case models.PurchaseTypePlan:
			if err := GrantPlanSubscription(db, intent.ID); err != nil {
				log.Printf("[RECONCILIATION] Plan repair failed for intent %d: %v", intent.ID, err)
			}
		}
	}
}

// ExpireSubscriptions marks lapsed plan subscriptions as expired
func ExpireSubscriptions() {
	db := database.Database.Db

	res := db.Model(&models.PlanSubscription{}).
		Where("status = ? AND expires_at < ?", models.SubscriptionActive, time.Now()).
		Update("status", models.SubscriptionExpired)
	if res.Error != nil {
		log.Printf("[RECONCILIATION] Error expiring subscriptions: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("[RECONCILIATION] Expired %d subscriptions", res.RowsAffected)
	}
}
