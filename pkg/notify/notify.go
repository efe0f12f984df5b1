// Package notify delivers alert messages. Delivery is single-shot: a Send either
// succeeds or returns the failure, with no retry or queueing.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// maxSubjectLen is the SNS limit for email subjects.
const maxSubjectLen = 100

// ErrEmptyMessage indicates a Send with no body.
var ErrEmptyMessage = errors.New("notification body must not be empty")

// Notifier sends one alert.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// Publisher is the subset of the SNS client used by SNS.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS publishes alerts to an SNS topic. Email subscribers receive the subject line.
type SNS struct {
	client   Publisher
	topicARN string
	logger   *slog.Logger
}

// NewSNS creates an SNS notifier using the default AWS credential chain.
func NewSNS(ctx context.Context, topicARN, region string, logger *slog.Logger) (*SNS, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSWithClient(sns.NewFromConfig(awsCfg), topicARN, logger), nil
}

// NewSNSWithClient creates an SNS notifier over an existing client.
func NewSNSWithClient(client Publisher, topicARN string, logger *slog.Logger) *SNS {
	return &SNS{
		client:   client,
		topicARN: topicARN,
		logger:   logger.With("system", "notify", "backend", "sns"),
	}
}

func (s *SNS) Send(ctx context.Context, subject, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyMessage
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(Subject(subject)),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	s.logger.InfoContext(ctx, "alert published", "message_id", aws.ToString(out.MessageId))
	return nil
}

// Log writes alerts to w. It is the notifier for local runs without a topic.
type Log struct {
	w      io.Writer
	logger *slog.Logger
}

// NewLog creates a Log notifier writing to w.
func NewLog(w io.Writer, logger *slog.Logger) *Log {
	return &Log{w: w, logger: logger.With("system", "notify", "backend", "log")}
}

func (l *Log) Send(ctx context.Context, subject, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyMessage
	}
	l.logger.WarnContext(ctx, "alert", "subject", subject)
	_, err := fmt.Fprintf(l.w, "=== %s ===\n%s\n", subject, body)
	return err
}

// Subject makes s safe for an SNS subject: printable ASCII only, no line breaks,
// at most 100 characters.
func Subject(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r >= 0x20 && r < 0x7f:
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	if len(out) > maxSubjectLen {
		out = out[:maxSubjectLen]
	}
	return out
}
