package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI часть клиента SES, которой пользуется Mailer.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Message письмо в виде обычного текста.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer отправляет письма через Amazon SES от имени отправителя.
type Mailer struct {
	client SESAPI
	from   string
}

// NewSES создаёт клиента SES по цепочке учётных данных AWS по умолчанию.
func NewSES(ctx context.Context, region, from string) (*Mailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("mailer: не удалось загрузить конфигурацию AWS: %w", err)
	}
	return New(ses.NewFromConfig(cfg), from), nil
}

func New(client SESAPI, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

// Send отправляет письмо и возвращает идентификатор сообщения SES.
func (m *Mailer) Send(ctx context.Context, msg Message) (string, error) {
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return "", fmt.Errorf("mailer: SES SendEmail: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
