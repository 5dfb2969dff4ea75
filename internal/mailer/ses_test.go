package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	sendFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.sendFunc(ctx, params, optFns...)
}

func TestSend_BuildsPlainTextMessage(t *testing.T) {
	client := &mockSES{sendFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		assert.Equal(t, []string{"jane@x.com"}, params.Destination.ToAddresses)
		assert.Equal(t, "erich@ottoscontracting.com", aws.ToString(params.Source))
		assert.Equal(t, "Proposal for Jane Doe", aws.ToString(params.Message.Subject.Data))
		assert.Equal(t, "Dear Jane Doe,", aws.ToString(params.Message.Body.Text.Data))
		assert.Nil(t, params.Message.Body.Html)
		return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
	}}

	id, err := New(client, "erich@ottoscontracting.com").Send(context.Background(), Message{
		To:      "jane@x.com",
		Subject: "Proposal for Jane Doe",
		Body:    "Dear Jane Doe,",
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
}

func TestSend_WrapsProviderError(t *testing.T) {
	boom := errors.New("throttled")
	client := &mockSES{sendFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, boom
	}}

	_, err := New(client, "a@b.c").Send(context.Background(), Message{To: "x@y.z"})
	assert.ErrorIs(t, err, boom)
}
