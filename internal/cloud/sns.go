package cloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes dataset notifications to a topic.
type SNSClient struct {
	svc      snsAPI
	topicArn string
}

func NewSNSClient(ctx context.Context, region, topicArn string) (*SNSClient, error) {
	cfg, err := loadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SNSClient{svc: sns.NewFromConfig(cfg), topicArn: topicArn}, nil
}

func (c *SNSClient) Publish(ctx context.Context, subject, message string) error {
	result, err := c.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	log.Debug().Str("message_id", aws.ToString(result.MessageId)).Msg("sns notification sent")
	return nil
}

// NotifyDatasetIngested announces a stored dataset with its headline figures.
func (c *SNSClient) NotifyDatasetIngested(ctx context.Context, s domain.Summary) error {
	subject := fmt.Sprintf("Dataset ingested: %s", s.Filename)
	if r := []rune(subject); len(r) > 100 {
		// SNS subjects are limited to 100 characters
		subject = string(r[:97]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset %d (%s) uploaded at %s\n\n", s.DatasetID, s.Filename, s.UploadedAt.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Equipment count: %d\n", s.RecordCount())
	fmt.Fprintf(&b, "Avg Flowrate: %.2f\n", s.AvgFlowrate)
	fmt.Fprintf(&b, "Avg Pressure: %.2f\n", s.AvgPressure)
	fmt.Fprintf(&b, "Avg Temperature: %.2f\n", s.AvgTemperature)
	if counts := s.TypeDistribution.Sorted(); len(counts) > 0 {
		b.WriteString("\nBy type:\n")
		for _, c := range counts {
			fmt.Fprintf(&b, "  %s: %d\n", c.Category, c.Count)
		}
	}
	return c.Publish(ctx, subject, b.String())
}
