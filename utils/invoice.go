package utils

import (
	"time"

	"edumart/models"
)

// Invoice is the receipt payload handed to the document renderer after a
// settlement succeeds. The renderer itself is an external collaborator.
type Invoice struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	OrderID       string    `json:"orderId"`
	PaymentID     string    `json:"paymentId"`
	BuyerName     string    `json:"buyerName"`
	BuyerEmail    string    `json:"buyerEmail"`
	ItemName      string    `json:"itemName"`
	Amount        int64     `json:"amount"` // minor units
	Currency      string    `json:"currency"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// BuildInvoice assembles the receipt for a captured payment intent
func BuildInvoice(intent *models.PaymentIntent, buyer *models.User, itemName string) Invoice {
	return Invoice{
		InvoiceNumber: "INV-" + intent.GatewayOrderID,
		OrderID:       intent.GatewayOrderID,
		PaymentID:     intent.GatewayPaymentID,
		BuyerName:     buyer.Name,
		BuyerEmail:    buyer.Email,
		ItemName:      itemName,
		Amount:        intent.Amount,
		Currency:      intent.Currency,
		IssuedAt:      time.Now(),
	}
}
