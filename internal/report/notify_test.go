// internal/report/notify_test.go
package report

import (
	"context"
	"errors"
	"testing"

	"visascope/internal/common/config"
	"visascope/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func notifierConfig(email, sms bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = email
	cfg.Email.FromEmail = "noreply@visascope.example"
	cfg.SMS.Enabled = sms
	cfg.AWS.Region = "us-east-1"
	return cfg
}

func TestNotifier_Notify_SendsEmail(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifier(notifierConfig(true, false), sesMock, snsMock, logger.NewTestLogger(t))

	n.Notify(context.Background(), testRecord())

	require.Len(t, sesMock.inputs, 1)
	input := sesMock.inputs[0]
	assert.Equal(t, []string{"ada@example.com"}, input.Destination.ToAddresses)
	assert.Equal(t, "noreply@visascope.example", *input.Source)
	assert.Contains(t, *input.Message.Subject.Data, "68/100")
	assert.Contains(t, *input.Message.Body.Text.Data, "Ada Lovelace")
	assert.Contains(t, *input.Message.Body.Text.Data, "eval-001")

	assert.Empty(t, snsMock.inputs)
}

func TestNotifier_Notify_EmailDisabled(t *testing.T) {
	sesMock := &mockSES{}
	n := NewNotifier(notifierConfig(false, false), sesMock, &mockSNS{}, logger.NewTestLogger(t))

	n.Notify(context.Background(), testRecord())

	assert.Empty(t, sesMock.inputs)
}

func TestNotifier_Notify_SendFailureIsSwallowed(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	n := NewNotifier(notifierConfig(true, false), sesMock, &mockSNS{}, logger.NewTestLogger(t))

	// Must not panic or surface the error.
	n.Notify(context.Background(), testRecord())

	assert.Len(t, sesMock.inputs, 1)
}

func TestNotifier_Notify_SMSOnlyForStrongCandidates(t *testing.T) {
	snsMock := &mockSNS{}
	n := NewNotifier(notifierConfig(false, true), &mockSES{}, snsMock, logger.NewTestLogger(t))

	rec := testRecord()
	rec.Submission.Phone = "+15550100"

	// moderate_fit gets no SMS.
	n.Notify(context.Background(), rec)
	assert.Empty(t, snsMock.inputs)

	rec.Result.Category = "strong_candidate"
	n.Notify(context.Background(), rec)
	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+15550100", *snsMock.inputs[0].PhoneNumber)
}

func TestNotifier_Notify_NoSMSWithoutPhone(t *testing.T) {
	snsMock := &mockSNS{}
	n := NewNotifier(notifierConfig(false, true), &mockSES{}, snsMock, logger.NewTestLogger(t))

	rec := testRecord()
	rec.Result.Category = "strong_candidate"
	rec.Submission.Phone = ""

	n.Notify(context.Background(), rec)
	assert.Empty(t, snsMock.inputs)
}
