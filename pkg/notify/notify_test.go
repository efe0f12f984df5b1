package notify_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/JaimeStill/counsel/pkg/notify"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSSend(t *testing.T) {
	pub := &fakePublisher{}
	n := notify.NewSNSWithClient(pub, "arn:aws:sns:us-east-1:123456789012:alerts", discard())

	if err := n.Send(context.Background(), "Contract Action Items - 2 Urgent Item(s)", "body"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(pub.inputs) != 1 {
		t.Fatalf("publish calls: got %d, want 1", len(pub.inputs))
	}
	in := pub.inputs[0]
	if aws.ToString(in.TopicArn) != "arn:aws:sns:us-east-1:123456789012:alerts" {
		t.Errorf("topic: %s", aws.ToString(in.TopicArn))
	}
	if aws.ToString(in.Subject) != "Contract Action Items - 2 Urgent Item(s)" {
		t.Errorf("subject: %s", aws.ToString(in.Subject))
	}
	if aws.ToString(in.Message) != "body" {
		t.Errorf("message: %s", aws.ToString(in.Message))
	}
}

func TestSNSSendErrors(t *testing.T) {
	boom := errors.New("throttled")
	n := notify.NewSNSWithClient(&fakePublisher{err: boom}, "arn", discard())

	if err := n.Send(context.Background(), "s", "body"); !errors.Is(err, boom) {
		t.Errorf("publish failure: got %v", err)
	}
	if err := n.Send(context.Background(), "s", "  "); !errors.Is(err, notify.ErrEmptyMessage) {
		t.Errorf("empty body: got %v", err)
	}
}

func TestLogSend(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLog(&buf, discard())

	if err := n.Send(context.Background(), "Subject", "1. EXPIRATION"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), "=== Subject ===") || !strings.Contains(buf.String(), "1. EXPIRATION") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Contract Action Items - 1 Urgent Item(s)", "Contract Action Items - 1 Urgent Item(s)"},
		{"non ascii dropped", "⚠ Urgent — items", "Urgent  items"},
		{"newlines flattened", "line one\nline two", "line one line two"},
		{"truncated", strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notify.Subject(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := notify.Config{Backend: "sns"}
	if err := cfg.Finalize(nil); err == nil || !strings.Contains(err.Error(), "topic_arn required") {
		t.Errorf("expected topic_arn error, got %v", err)
	}

	cfg = notify.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.Backend != notify.BackendLog {
		t.Errorf("backend: got %s, want log", cfg.Backend)
	}
}
