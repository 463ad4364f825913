package adapters

import (
	"context"
	"time"
	"weaveit-pipeline/application/ports/outbound"
	"weaveit-pipeline/config"
	"weaveit-pipeline/domain"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

type dynamoJobEventItem struct {
	ContentId  string            `dynamodbav:"content_id"`
	EventKey   string            `dynamodbav:"event_key"`
	RunId      string            `dynamodbav:"run_id"`
	OutputType domain.OutputType `dynamodbav:"output_type"`
	State      domain.JobState   `dynamodbav:"state"`
	Message    string            `dynamodbav:"message,omitempty"`
	OccurredAt int64             `dynamodbav:"occurred_at"`
	TTL        int64             `dynamodbav:"ttl"`
}

// dynamoJobLedger keeps a short-lived trail of job transitions for operators.
// Status is never read back from it.
type dynamoJobLedger struct {
	logger       outbound.LoggerPort
	dynamoSvc    dynamodbiface.DynamoDBAPI
	dynamoConfig *config.DynamoConfig
	now          func() time.Time
}

func NewDynamoJobLedger(logger outbound.LoggerPort, dynamoSvc dynamodbiface.DynamoDBAPI, dynamoConfig *config.DynamoConfig) outbound.JobEventLedgerPort {
	return &dynamoJobLedger{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
		now:          time.Now,
	}
}

func (c *dynamoJobLedger) Record(ctx context.Context, event outbound.JobEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = c.now()
	}

	item := dynamoJobEventItem{
		ContentId:  event.ContentID.Value,
		EventKey:   event.RunID + "#" + occurredAt.UTC().Format(time.RFC3339Nano) + "#" + string(event.State),
		RunId:      event.RunID,
		OutputType: event.ContentID.OutputType,
		State:      event.State,
		Message:    event.Message,
		OccurredAt: occurredAt.Unix(),
		TTL:        c.now().Add(time.Duration(c.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to marshal job event item", map[string]interface{}{
			"item": item,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(c.dynamoConfig.TableName),
	}

	_, err = c.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to save job event item", map[string]interface{}{
			"content_id": item.ContentId,
			"state":      item.State,
		})
		return err
	}

	return nil
}
