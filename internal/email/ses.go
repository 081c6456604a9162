package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the subset of *sesv2.Client the transport calls.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	GetAccount(ctx context.Context, in *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
}

// SESTransport delivers mail through the Amazon SES v2 API.
type SESTransport struct {
	client SESAPI
}

// NewSESTransport loads AWS configuration for region. Static credentials are
// used when both key and secret are set; otherwise the default provider chain
// (env, shared config, instance role) applies.
func NewSESTransport(ctx context.Context, region, accessKey, secretKey string) (*SESTransport, error) {
	if region == "" {
		region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("email: load aws config: %w", err)
	}
	return NewSESTransportWithClient(sesv2.NewFromConfig(cfg)), nil
}

// NewSESTransportWithClient wraps an existing client.
func NewSESTransportWithClient(client SESAPI) *SESTransport {
	return &SESTransport{client: client}
}

func (t *SESTransport) Name() string { return "ses" }

// Verify reads the account and fails when sending is paused.
func (t *SESTransport) Verify(ctx context.Context) error {
	out, err := t.client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return fmt.Errorf("email: ses get account: %w", err)
	}
	if !out.SendingEnabled {
		return fmt.Errorf("email: ses sending is disabled for this account")
	}
	return nil
}

func (t *SESTransport) Send(ctx context.Context, msg Message) (string, error) {
	body := &types.Body{
		Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}

	out, err := t.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From.String()),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("email: ses send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
