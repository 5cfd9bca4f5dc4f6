package utils

import (
	"edumart/config"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendEmail delivers one transactional email through SendGrid
func sendEmail(toName, toEmail, subject, htmlBody string) error {
	from := mail.NewEmail(config.AppConfig.EmailSenderName, config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] Error sending %q to %s: %v", subject, toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] SendGrid returned %d for %q to %s", resp.StatusCode, subject, toEmail)
		return fmt.Errorf("sendgrid returned %d", resp.StatusCode)
	}
	return nil
}

// HTML wrapper for a consistent look across triggers
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A2B4C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A2B4C; line-height: 1.6; }
			.content h2 { color: #1A2B4C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #d7b56d; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>EDUMART</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 EduMart Learning. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// SendWelcomeEmail greets a new learner after signup
func SendWelcomeEmail(name, email string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Welcome to EduMart! Browse the catalog, pick a course and start learning today.</p>
	`, name)

	if err := sendEmail(name, email, "Welcome to EduMart!", getEmailTemplate("Welcome Aboard", body)); err != nil {
		log.Printf("[EMAIL] Welcome email failed for %s", email)
	}
}

// SendPaymentSuccessEmail confirms a captured payment
func SendPaymentSuccessEmail(name, email, itemName, orderID string, amount int64, currency string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your payment was successful.</p>
		<div class="info-box">
			<strong>Item:</strong> %s<br>
			<strong>Order ID:</strong> %s<br>
			<strong>Amount:</strong> %.2f %s
		</div>
		<p>Your invoice is available from your account page.</p>
	`, name, itemName, orderID, float64(amount)/100, currency)

	if err := sendEmail(name, email, "Payment Successful - EduMart", getEmailTemplate("Payment Received", body)); err != nil {
		log.Printf("[EMAIL] Payment success email failed for %s order %s", email, orderID)
	}
}

// SendCertificateEmail congratulates a learner on completing a course
func SendCertificateEmail(name, email, courseTitle, certificateNumber string) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<div class="info-box">
			<strong>Certificate Number:</strong> %s
		</div>
		<p>Download your certificate from the course page.</p>
	`, name, courseTitle, certificateNumber)

	if err := sendEmail(name, email, "Your Certificate is Ready - EduMart", getEmailTemplate("Course Completed", body)); err != nil {
		log.Printf("[EMAIL] Certificate email failed for %s cert %s", email, certificateNumber)
	}
}
