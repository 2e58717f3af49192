// Package notify sends transactional email through Amazon SES. The
// mailer is disabled unless a from-address is configured, so local
// development never needs AWS credentials.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends account emails via Amazon SES.
type Mailer struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewMailer builds a Mailer. An empty fromEmail returns a disabled
// mailer whose send methods succeed without doing anything.
func NewMailer(awsRegion, fromEmail, fromName, appBaseURL string) (*Mailer, error) {
	if fromEmail == "" {
		log.Println("Email disabled: SES_FROM_EMAIL not configured")
		return &Mailer{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	log.Printf("Email enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &Mailer{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// Enabled reports whether the mailer will actually send.
func (m *Mailer) Enabled() bool {
	return m.enabled
}

// SendWelcome greets a newly registered parent account.
func (m *Mailer) SendWelcome(ctx context.Context, toEmail, toName string) error {
	if toEmail == "" {
		return nil
	}
	if !m.enabled {
		log.Printf("Skipping email (disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to RocketLearn!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #6c5ce7;">Welcome to RocketLearn!</h1>
		<p>Hi %s,</p>
		<p>Your RocketLearn account is ready. Add your children, pick their
		first games and stories, and watch their XP take off.</p>
		<p><a href="%s" style="display: inline-block; padding: 12px 30px; background-color: #6c5ce7; color: white; text-decoration: none; border-radius: 5px;">Start Learning</a></p>
		<p style="font-size: 12px; color: #666;">This is an automated email from RocketLearn. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, m.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your RocketLearn account is ready. Add your children, pick their first
games and stories, and watch their XP take off.

Start here: %s

---
This is an automated email from RocketLearn. Please do not reply.
`, toName, m.appBaseURL)

	return m.send(ctx, toEmail, subject, htmlBody, textBody)
}

// SendUpgrade confirms a subscription change.
func (m *Mailer) SendUpgrade(ctx context.Context, toEmail, toName, plan string) error {
	if toEmail == "" {
		return nil
	}
	if !m.enabled {
		log.Printf("Skipping email (disabled): upgrade to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("Your RocketLearn plan is now %s", plan)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #6c5ce7;">Plan updated</h1>
		<p>Hi %s,</p>
		<p>Your family is now on the <strong>%s</strong> plan. Newly unlocked
		games and stories are waiting on the home screen.</p>
		<p style="font-size: 12px; color: #666;">This is an automated email from RocketLearn. Please do not reply.</p>
	</div>
</body>
</html>
`, toName, plan)

	textBody := fmt.Sprintf(`Hi %s,

Your family is now on the %s plan. Newly unlocked games and stories are
waiting on the home screen.

---
This is an automated email from RocketLearn. Please do not reply.
`, toName, plan)

	return m.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (m *Mailer) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := m.fromEmail
	if m.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
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

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("sending email to %s: %w", toEmail, err)
	}
	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
