package utils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"edumart/database"
	"edumart/models"
	courseModels "edumart/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PaymentIntent{},
		&models.PlanSubscription{},
		&courseModels.Course{},
		&courseModels.Enrollment{},
	))

	// The sweeps read the global handle
	prev := database.Database
	database.Database = database.DbInstance{Db: db}
	t.Cleanup(func() {
		database.Database = prev
		sqlDB.Close()
	})
	return db
}

func seedCapturedIntent(t *testing.T, db *gorm.DB, purchase models.Purchase, orderID string, pending bool) *models.PaymentIntent {
	t.Helper()
	intent := models.PaymentIntent{
		UserID:             5,
		PurchaseType:       purchase.Type,
		CourseID:           purchase.CourseID,
		PlanCode:           purchase.PlanCode,
		Amount:             99900,
		Currency:           "INR",
		Status:             models.PaymentStatusCaptured,
		GatewayOrderID:     orderID,
		GatewayPaymentID:   "pay_" + orderID,
		EntitlementPending: pending,
	}
	require.NoError(t, db.Create(&intent).Error)
	return &intent
}

// backdate pushes an intent behind the sweep's grace window
func backdate(t *testing.T, db *gorm.DB, intent *models.PaymentIntent) {
	t.Helper()
	require.NoError(t, db.Model(intent).
		UpdateColumn("updated_at", time.Now().Add(-10*time.Minute)).Error)
}

func TestRepairPendingEntitlementsProvisionsCourse(t *testing.T) {
	db := setupTestDB(t)
	intent := seedCapturedIntent(t, db, models.CoursePurchase(3), "order_stuck", true)
	backdate(t, db, intent)

	RepairPendingEntitlements()

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 5, 3).First(&enrollment).Error)
	assert.Equal(t, courseModels.EnrollmentActive, enrollment.Status)

	var repaired models.PaymentIntent
	require.NoError(t, db.First(&repaired, intent.ID).Error)
	assert.False(t, repaired.EntitlementPending)
}

func TestRepairPendingEntitlementsGrantsPlan(t *testing.T) {
	db := setupTestDB(t)
	intent := seedCapturedIntent(t, db, models.PlanPurchase("YEARLY"), "order_plan_stuck", true)
	backdate(t, db, intent)

	RepairPendingEntitlements()

	var sub models.PlanSubscription
	require.NoError(t, db.Where("payment_intent_id = ?", intent.ID).First(&sub).Error)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Equal(t, "YEARLY", sub.PlanCode)

	var repaired models.PaymentIntent
	require.NoError(t, db.First(&repaired, intent.ID).Error)
	assert.False(t, repaired.EntitlementPending)
}

func TestRepairPendingEntitlementsHonorsGraceWindow(t *testing.T) {
	db := setupTestDB(t)
	// Freshly captured; settlement may still be finishing its own provisioning
	intent := seedCapturedIntent(t, db, models.CoursePurchase(3), "order_fresh", true)

	RepairPendingEntitlements()

	var count int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Count(&count).Error)
	assert.Zero(t, count)

	var untouched models.PaymentIntent
	require.NoError(t, db.First(&untouched, intent.ID).Error)
	assert.True(t, untouched.EntitlementPending)
}

func TestGrantPlanSubscriptionReplaySafe(t *testing.T) {
	db := setupTestDB(t)
	intent := seedCapturedIntent(t, db, models.PlanPurchase("QUARTERLY"), "order_plan", true)

	require.NoError(t, GrantPlanSubscription(db, intent.ID))
	require.NoError(t, GrantPlanSubscription(db, intent.ID))

	var count int64
	require.NoError(t, db.Model(&models.PlanSubscription{}).
		Where("payment_intent_id = ?", intent.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var sub models.PlanSubscription
	require.NoError(t, db.Where("payment_intent_id = ?", intent.ID).First(&sub).Error)
	expected := sub.StartedAt.AddDate(0, 0, models.Plans["QUARTERLY"].DurationDays)
	assert.WithinDuration(t, expected, sub.ExpiresAt, time.Second)

	var granted models.PaymentIntent
	require.NoError(t, db.First(&granted, intent.ID).Error)
	assert.False(t, granted.EntitlementPending)
}

func TestGrantPlanSubscriptionRequiresCapture(t *testing.T) {
	db := setupTestDB(t)

	intent, err := models.NewPaymentIntent(5, models.PlanPurchase("MONTHLY"), 99900, "INR", "order_created")
	require.NoError(t, err)
	require.NoError(t, db.Create(intent).Error)

	// Still CREATED: money has not moved, so nothing may be granted
	assert.Error(t, GrantPlanSubscription(db, intent.ID))

	var count int64
	require.NoError(t, db.Model(&models.PlanSubscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExpireSubscriptions(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()

	lapsed := models.PlanSubscription{
		UserID: 1, PlanCode: "MONTHLY", PaymentIntentID: 11,
		Status: models.SubscriptionActive,
		StartedAt: now.AddDate(0, 0, -40), ExpiresAt: now.AddDate(0, 0, -10),
	}
	current := models.PlanSubscription{
		UserID: 2, PlanCode: "YEARLY", PaymentIntentID: 12,
		Status: models.SubscriptionActive,
		StartedAt: now, ExpiresAt: now.AddDate(0, 0, 300),
	}
	require.NoError(t, db.Create(&lapsed).Error)
	require.NoError(t, db.Create(&current).Error)

	ExpireSubscriptions()

	var got models.PlanSubscription
	require.NoError(t, db.First(&got, lapsed.ID).Error)
	assert.Equal(t, models.SubscriptionExpired, got.Status)

	var stillCurrent models.PlanSubscription
	require.NoError(t, db.First(&stillCurrent, current.ID).Error)
	assert.Equal(t, models.SubscriptionActive, stillCurrent.Status)
}
