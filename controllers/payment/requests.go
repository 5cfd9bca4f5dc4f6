package paymentController

// CreateOrderRequest is the checkout body. Exactly one of CourseID and
// PlanCode must be set; the validator enforces the exclusivity.
type CreateOrderRequest struct {
	CourseID uint   `json:"courseId" validate:"required_without=PlanCode,excluded_with=PlanCode"`
	PlanCode string `json:"planCode" validate:"required_without=CourseID,excluded_with=CourseID"`
}

// VerifyPaymentRequest is the payment-completion callback body
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}
