package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. If fromEmail is empty
// the service starts disabled and all sends become no-ops.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendInviteCodeEmail sends a family group invite code to the recipient
func (s *EmailService) SendInviteCodeEmail(ctx context.Context, toEmail, groupName, code string, expiresAt time.Time) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invite code to %s", toEmail)
		return nil
	}

	minutes := int(time.Until(expiresAt).Minutes())
	if minutes < 1 {
		minutes = 1
	}

	subject := fmt.Sprintf("You've been invited to join %s on CareSummary", groupName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d9d78; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.code { font-size: 32px; letter-spacing: 6px; font-family: monospace; text-align: center; padding: 16px; background-color: #fff; border: 1px dashed #2d9d78; border-radius: 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Family Group Invitation</h1>
		</div>
		<div class="content">
			<p>You've been invited to join the family group <strong>%s</strong> on CareSummary.</p>
			<p>Enter this code on the family page to join:</p>
			<p class="code">%s</p>
			<p><strong>This code will expire in about %d minutes.</strong></p>
			<p>Join here: %s/family</p>
			<p>If you weren't expecting this invitation, you can safely ignore this email.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from CareSummary. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, groupName, code, minutes, s.appBaseURL)

	textBody := fmt.Sprintf(`You've been invited to join the family group %s on CareSummary.

Enter this code on the family page to join:

    %s

This code will expire in about %d minutes.

Join here: %s/family

If you weren't expecting this invitation, you can safely ignore this email.

---
This is an automated email from CareSummary. Please do not reply.
`, groupName, code, minutes, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to CareSummary"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d9d78; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to CareSummary</h1>
		</div>
		<div class="content">
			<p>Thank you for creating your CareSummary account.</p>
			<p>Here's what you can do next:</p>
			<ul>
				<li>Save summaries of your medical visits</li>
				<li>Create a family group and invite relatives with a short code</li>
				<li>Keep sensitive records private while sharing the rest</li>
			</ul>
			<p>Get started: %s</p>
		</div>
		<div class="footer">
			<p>This is an automated email from CareSummary. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, s.appBaseURL)

	textBody := fmt.Sprintf(`Thank you for creating your CareSummary account.

Here's what you can do next:
- Save summaries of your medical visits
- Create a family group and invite relatives with a short code
- Keep sensitive records private while sharing the rest

Get started: %s

---
This is an automated email from CareSummary. Please do not reply.
`, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
