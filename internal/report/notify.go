// internal/report/notify.go
package report

import (
	"context"
	"fmt"
	"strings"

	"visascope/internal/common/config"
	"visascope/internal/common/logger"
	"visascope/internal/evaluation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Interfaces for mocking the AWS clients in tests.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier delivers the evaluation result to the applicant after the record
// is persisted. Delivery is best-effort: a failed send never fails the
// evaluation, it is logged and dropped.
type Notifier struct {
	config    config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
	}
}

// Notify sends the result email, and an SMS for strong candidates with a
// phone number on file.
func (n *Notifier) Notify(ctx context.Context, rec *evaluation.Record) {
	if n.config.Email.Enabled && rec.Submission.Email != "" {
		if err := n.sendEmail(ctx, rec); err != nil {
			n.logger.Error("result email send failed", map[string]interface{}{
				"error":        err,
				"evaluationId": rec.ID,
				"email":        rec.Submission.Email,
			})
		} else {
			n.logger.Info("result email sent", map[string]interface{}{
				"evaluationId": rec.ID,
			})
		}
	}

	if n.config.SMS.Enabled && rec.Submission.Phone != "" && rec.Result.Category == "strong_candidate" {
		if err := n.sendSMS(ctx, rec); err != nil {
			n.logger.Error("result SMS send failed", map[string]interface{}{
				"error":        err,
				"evaluationId": rec.ID,
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, rec *evaluation.Record) error {
	subject := fmt.Sprintf("Your visa eligibility result: %d/100", rec.Result.FinalScore)
	body := buildEmailBody(rec)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{rec.Submission.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, rec *evaluation.Record) error {
	message := fmt.Sprintf("Your visa self-assessment scored %d/100. Full report: evaluation %s.",
		rec.Result.FinalScore, rec.ID)

	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(rec.Submission.Phone),
		Message:     aws.String(message),
	})
	return err
}

func buildEmailBody(rec *evaluation.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", rec.Submission.FullName)
	fmt.Fprintf(&b, "Your eligibility self-assessment for %s (%s) is complete.\n\n",
		rec.Submission.VisaCode, rec.Submission.Country)
	fmt.Fprintf(&b, "Final score: %d/100 (%s)\n\n", rec.Result.FinalScore,
		categoryLabel(string(rec.Result.Category)))
	fmt.Fprintf(&b, "%s\n\n", rec.Result.Summary)

	if len(rec.Result.NextSteps) > 0 {
		b.WriteString("Recommended next steps:\n")
		for _, step := range rec.Result.NextSteps {
			fmt.Fprintf(&b, "  - %s\n", step)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Your evaluation id is %s. Use it to retrieve the full PDF report.\n\n", rec.ID)
	b.WriteString("This is an automated self-assessment, not legal advice.\n")

	return b.String()
}
