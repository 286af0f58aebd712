package mailing

import (
	"fmt"
	"html"
	"strconv"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func (c MailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPEmail != ""
}

// Notifier tells recipients about changes to their requests.
type Notifier interface {
	NotifyRequestConfirmed(toEmail string, request domain.FoodRequest, listing domain.DonationListing) error
}

type mailNotifier struct {
	config MailConfig
}

// NewNotifier returns a notifier that only logs when SMTP is not configured.
func NewNotifier(config MailConfig) Notifier {
	if !config.Enabled() {
		return logNotifier{}
	}
	return &mailNotifier{config: config}
}

func (n *mailNotifier) NotifyRequestConfirmed(toEmail string, request domain.FoodRequest, listing domain.DonationListing) error {
	subject := fmt.Sprintf("Your request for %q was confirmed", listing.Title)
	body := fmt.Sprintf(
		`<p>Good news! Your request for <b>%s</b> (%g %s) has been confirmed.</p>
<p>Pickup at %s between %s and %s.</p>
<p><a href="%s/requests/%s">View request</a></p>`,
		html.EscapeString(listing.Title),
		listing.Quantity, listing.Unit,
		html.EscapeString(listing.PickupAddress),
		listing.PickupWindow.Start.Format("2006-01-02 15:04"),
		listing.PickupWindow.End.Format("2006-01-02 15:04"),
		n.config.AppURL, request.ID,
	)
	return SendMail(n.config, toEmail, subject, body)
}

type logNotifier struct{}

func (logNotifier) NotifyRequestConfirmed(toEmail string, request domain.FoodRequest, _ domain.DonationListing) error {
	log.Infow("smtp not configured, skipping confirmation mail", "request_id", request.ID, "to", toEmail)
	return nil
}

func SendMail(emailConfig MailConfig, toEmail string, subject string, body string) error {
	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", emailConfig.SMTPEmail, emailConfig.SMTPSender)
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	port, err := strconv.Atoi(emailConfig.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		emailConfig.SMTPHost,
		port,
		emailConfig.SMTPEmail,
		emailConfig.SMTPPassword,
	)

	return dialer.DialAndSend(mailer)
}
