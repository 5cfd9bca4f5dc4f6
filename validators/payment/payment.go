package paymentValidator

import (
	paymentController "edumart/controllers/payment"
	"edumart/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CreateOrder validates the checkout request
func CreateOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(paymentController.CreateOrderRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CourseID == 0 && reqData.PlanCode == "" {
			errors["purchase"] = "Either courseId or planCode is required!"
		}
		if reqData.CourseID != 0 && reqData.PlanCode != "" {
			errors["purchase"] = "courseId and planCode cannot both be set!"
		}
		if err := validate.Struct(reqData); err != nil && len(errors) == 0 {
			errors["purchase"] = "Invalid purchase selection!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCreateOrder", reqData)
		return c.Next()
	}
}

// VerifyPayment validates the gateway callback body
func VerifyPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(paymentController.VerifyPaymentRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.OrderID == "" {
			errors["orderId"] = "Order ID is required!"
		}
		if reqData.PaymentID == "" {
			errors["paymentId"] = "Payment ID is required!"
		}
		if reqData.Signature == "" {
			errors["signature"] = "Signature is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVerifyPayment", reqData)
		return c.Next()
	}
}
