// utils/email.go
package utils

import (
	"fmt"
	"strings"

	"github.com/fehmi19/cheebo/models"
	"github.com/keighl/postmark"
	"github.com/rs/zerolog"
)

// EmailService handles sending emails using Postmark. Without an API token it
// only logs what would have been sent.
type EmailService struct {
	client *postmark.Client
	sender string
	log    zerolog.Logger
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(apiToken, sender string, log zerolog.Logger) *EmailService {
	es := &EmailService{sender: sender, log: log.With().Str("component", "email").Logger()}
	if apiToken != "" {
		es.client = postmark.NewClient(apiToken, "")
	}
	return es
}

// Enabled reports whether emails are actually delivered
func (es *EmailService) Enabled() bool {
	return es.client != nil
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if !es.Enabled() {
		es.log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email delivery disabled")
		return nil
	}
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	es.log.Info().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	return nil
}

// SendWelcomeEmail greets a newly registered user
func (es *EmailService) SendWelcomeEmail(user models.User) error {
	subject := "Bienvenue sur Cheebo"
	htmlContent := fmt.Sprintf(
		"<strong>Bonjour %s,</strong><br><br>Votre compte Cheebo a été créé avec succès.<br><br>À bientôt !",
		user.Name,
	)
	return es.SendEmail(user.Email, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail string, order models.Order) error {
	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "%d × %s: %.2f<br>", item.Quantity, item.Name, item.Subtotal)
	}
	subject := fmt.Sprintf("Order Confirmation %s", order.OrderNumber)
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order <strong>%s</strong> has been placed successfully.<br><br>%s<br>Total Amount: <strong>%.2f TND</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.OrderNumber,
		lines.String(),
		order.TotalAmount,
		order.PaymentMethod,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderStatusEmail notifies the user that their order changed status
func (es *EmailService) SendOrderStatusEmail(toEmail, name string, order models.Order) error {
	subject := fmt.Sprintf("Order %s is now %s", order.OrderNumber, order.Status)
	content := fmt.Sprintf(
		"Dear %s,<br><br>Your order (%s) status has been updated to '%s'.<br><br>Thank you for shopping with us!",
		name, order.OrderNumber, order.Status,
	)
	return es.SendEmail(toEmail, subject, content)
}
