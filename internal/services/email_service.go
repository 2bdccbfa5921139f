package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailService defines the interface for outbound email dispatch
type EmailService interface {
	SendTwoFactorCode(ctx context.Context, email, code string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	resetURL    string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, resetURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		resetURL:    resetURL,
		logger:      logger,
	}, nil
}

// SendTwoFactorCode sends the 6-digit login code. The code is valid for
// ten minutes; the message says so.
func (s *AWSSESEmailService) SendTwoFactorCode(ctx context.Context, email, code string) error {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Your verification code</h2>
        <p>Enter this code to finish signing in:</p>
        <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
        <p>The code is valid for 10 minutes.</p>
        <p style="color: #777; font-size: 12px;">If you did not try to sign in, you can safely ignore this email.</p>
    </div>
</body>
</html>
`, code)

	textBody := fmt.Sprintf(`Your verification code

Enter this code to finish signing in: %s

The code is valid for 10 minutes.

If you did not try to sign in, you can safely ignore this email.
`, code)

	return s.send(ctx, email, "Your verification code", htmlBody, textBody)
}

// SendPasswordResetEmail sends the recovery link for a reset token
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.resetURL, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Password recovery</h2>
        <p>We received a request to reset the password for your account.</p>
        <p><a href="%s" style="background-color: #27ae60; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">Reset my password</a></p>
        <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
        <p>The link is valid for 1 hour.</p>
        <p style="color: #777; font-size: 12px;">If you did not request this, you can safely ignore this email.</p>
    </div>
</body>
</html>
`, resetLink, resetLink)

	textBody := fmt.Sprintf(`Password recovery

We received a request to reset the password for your account.

Open this link to choose a new password:
%s

The link is valid for 1 hour.

If you did not request this, you can safely ignore this email.
`, resetLink)

	return s.send(ctx, email, "Password recovery", htmlBody, textBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, email, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("subject", subject),
		slog.String("message_id", *result.MessageId))

	return nil
}
