package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestAWSSNSSenderSendSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	sender := &awsSNSSender{topicARN: "arn:aws:sns:ap-northeast-1:123:topic", client: client, log: logger.NopLogger{}}

	err := sender.Send(context.Background(), NewEvent("news-page", "msg", domain.Article{Title: "T", URL: "https://a"}))
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:ap-northeast-1:123:topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes[sourceAttribute]
	if !ok || aws.ToString(attr.StringValue) != "news-page" {
		t.Fatalf("source_id attribute missing or wrong: %#v", attr)
	}
	if msg := aws.ToString(client.input.Message); !strings.Contains(msg, `"source_id":"news-page"`) {
		t.Fatalf("Message missing source_id: %s", msg)
	}
}

func TestAWSSNSSenderSendError(t *testing.T) {
	sender := &awsSNSSender{topicARN: "arn", client: &fakeSNSClient{err: errors.New("boom")}, log: logger.NopLogger{}}
	if err := sender.Send(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error from Send")
	}
}
