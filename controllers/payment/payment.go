package paymentController

import (
	"errors"
	"fmt"
	"log"
	"time"

	"edumart/config"
	"edumart/database"
	"edumart/gateway"
	"edumart/middleware"
	"edumart/models"
	courseModels "edumart/models/course"

	"github.com/gofiber/fiber/v2"
)

// OrderCreator is the slice of the gateway client checkout needs
type OrderCreator interface {
	CreateOrder(amount int64, currency, receiptID string) (string, error)
}

// Gateway is the payment gateway client, wired up in main
var Gateway OrderCreator

// CreateOrder initiates checkout: registers an order with the gateway and
// persists a CREATED payment intent keyed by the gateway order ID.
func CreateOrder(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedCreateOrder").(*CreateOrderRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Price comes from the catalog, never from the client
	var purchase models.Purchase
	var amount int64
	currency := "INR"

	if reqData.CourseID != 0 {
		var course courseModels.Course
		if err := db.Where("id = ? AND is_deleted = false AND status = ? AND is_published = ?",
			reqData.CourseID, "ACTIVE", true).First(&course).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
		}
		purchase = models.CoursePurchase(course.ID)
		amount = course.PriceAmount
		currency = course.Currency
	} else {
		plan, known := models.PlanByCode(reqData.PlanCode)
		if !known {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown subscription plan!", nil)
		}
		purchase = models.PlanPurchase(plan.Code)
		amount = plan.PriceAmount
		currency = plan.Currency
	}

	receiptID := receiptFor(userId, purchase)
	orderID, err := Gateway.CreateOrder(amount, currency, receiptID)
	if err != nil {
		// Nothing is persisted when the gateway call fails
		if errors.Is(err, gateway.ErrGatewayUnavailable) {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment gateway unavailable. Please try again!", nil)
		}
		log.Printf("[PAYMENT] Gateway order creation failed for user %d: %v", userId, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment order!", nil)
	}

	intent, err := models.NewPaymentIntent(userId, purchase, amount, currency, orderID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid purchase!", nil)
	}

	if err := db.Create(intent).Error; err != nil {
		log.Printf("[PAYMENT] Failed to persist intent for order %s: %v", orderID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment order!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment order created!", fiber.Map{
		"orderId":  orderID,
		"amount":   amount,
		"currency": currency,
		"keyId":    config.AppConfig.GatewayKeyID,
	})
}

// VerifyPayment handles the gateway's payment-completion callback and settles
// the referenced order.
func VerifyPayment(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	reqData, ok := c.Locals("validatedVerifyPayment").(*VerifyPaymentRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := Settle(database.Database.Db, config.AppConfig.GatewayKeySecret,
		reqData.OrderID, reqData.PaymentID, reqData.Signature)
	if err != nil {
		if errors.Is(err, ErrUnknownOrder) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Order not found!", nil)
		}
		if errors.Is(err, ErrAlreadySettled) {
			// Replay-prone webhook senders must read this as "already
			// handled", not as a failure to retry
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment already processed!", nil)
		}
		log.Printf("[PAYMENT] Settlement error for order %s: %v", reqData.OrderID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process payment!", nil)
	}

	if result.Outcome == OutcomeVerificationFailed {
		// Deliberately generic: never reveal why verification failed
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment verification failed!", nil)
	}

	data := fiber.Map{
		"orderId":   result.Intent.GatewayOrderID,
		"paymentId": result.Intent.GatewayPaymentID,
		"status":    result.Intent.Status,
	}
	if result.Enrollment != nil {
		data["enrollmentId"] = result.Enrollment.ID
		data["courseId"] = result.Enrollment.CourseID
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment verified successfully!", data)
}

// GetPaymentHistory returns the user's payment intents, newest first
func GetPaymentHistory(c *fiber.Ctx) error {
	userId := c.Locals("userId").(uint)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", userId).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}

	// Parse query params
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	offset := (page - 1) * limit
	db := database.Database.Db

	query := db.Model(&models.PaymentIntent{}).Where("user_id = ? AND is_deleted = false", userId)

	var total int64
	query.Count(&total)

	var intents []models.PaymentIntent
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&intents).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payment history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment history fetched!", fiber.Map{
		"payments": intents,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func receiptFor(userID uint, purchase models.Purchase) string {
	if purchase.Type == models.PurchaseTypeCourse {
		return fmt.Sprintf("rcpt-u%d-c%d-%d", userID, purchase.CourseID, time.Now().Unix())
	}
	return fmt.Sprintf("rcpt-u%d-%s-%d", userID, purchase.PlanCode, time.Now().Unix())
}
