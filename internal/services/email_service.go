package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/microcosm-cc/bluemonday"
)

// InquiryNotification carries what the owner needs to answer an inquiry
type InquiryNotification struct {
	ProductTitle string
	ContactType  string
	ContactValue string
	Message      string
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendInquiryNotification(ctx context.Context, n InquiryNotification) error
}

// SESClient is the subset of the SES API used here
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   SESClient
	fromAddress string
	ownerEmail  string
	policy      *bluemonday.Policy
	logger      *slog.Logger
}

// NewSESClient loads the default AWS credential chain for the region
func NewSESClient(ctx context.Context, region string) (*ses.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return ses.NewFromConfig(cfg), nil
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(client SESClient, fromAddress, ownerEmail string, logger *slog.Logger) *AWSSESEmailService {
	return &AWSSESEmailService{
		sesClient:   client,
		fromAddress: fromAddress,
		ownerEmail:  ownerEmail,
		policy:      bluemonday.StrictPolicy(),
		logger:      logger,
	}
}

// SendInquiryNotification e-mails the shop owner about a new inquiry.
// Without OWNER_EMAIL it logs a warning and does nothing.
func (s *AWSSESEmailService) SendInquiryNotification(ctx context.Context, n InquiryNotification) error {
	if s.ownerEmail == "" {
		s.logger.Warn("OWNER_EMAIL not configured, skipping notification")
		return nil
	}

	title := s.clean(n.ProductTitle)
	contact := s.clean(n.ContactValue)
	message := s.clean(n.Message)

	label := "WhatsApp"
	if n.ContactType == "instagram" {
		label = "Instagram"
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.ownerEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("PUPPED: New inquiry for " + title),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(inquiryHTML(title, label, contact, message)),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(inquiryText(title, label, contact, message)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("inquiry notification sent", slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// clean strips markup from user input and unescapes entities so the text
// can be escaped once for the HTML part and used raw in the text part.
func (s *AWSSESEmailService) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func inquiryHTML(title, label, contact, message string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #1d1d1f; margin-bottom: 24px;">New Contact Request</h2>`)
	writeHTMLField(&b, "Product", title)
	writeHTMLField(&b, label, contact)
	if message != "" {
		writeHTMLField(&b, "Message", message)
	}
	b.WriteString(`<p style="color: #86868b; font-size: 12px; margin-top: 24px;">This notification was sent from your PUPPED store.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}

func writeHTMLField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `<div style="background: #f5f5f7; border-radius: 12px; padding: 20px; margin-bottom: 16px;">`+
		`<p style="margin: 0 0 8px 0; color: #86868b; font-size: 14px;">%s</p>`+
		`<p style="margin: 0; color: #1d1d1f; font-size: 16px;">%s</p></div>`,
		html.EscapeString(label), html.EscapeString(value))
}

func inquiryText(title, label, contact, message string) string {
	text := fmt.Sprintf("New Contact Request\n\nProduct: %s\n%s: %s\n", title, label, contact)
	if message != "" {
		text += "\nMessage:\n" + message + "\n"
	}
	return text + "\nThis notification was sent from your PUPPED store.\n"
}
