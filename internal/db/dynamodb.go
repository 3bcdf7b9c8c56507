package db

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/steamnoodles/internal/models"
	"github.com/spacesedan/steamnoodles/internal/utils"
)

const (
	REVIEWS_TABLE_NAME        = "Reviews"
	maxUnprocessedRetries     = 3
	initialUnprocessedBackoff = 500 * time.Millisecond
)

// DynamoAPI is the slice of *dynamodb.Client the store uses.
type DynamoAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	dynamodb.ScanAPIClient
}

// DynamoStore keeps reviews in a table keyed by id. Timestamps are stored
// as unix seconds.
type DynamoStore struct {
	client  DynamoAPI
	table   string
	backoff time.Duration
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	if table == "" {
		table = REVIEWS_TABLE_NAME
	}
	return &DynamoStore{client: client, table: table, backoff: initialUnprocessedBackoff}
}

func (s *DynamoStore) Append(ctx context.Context, records ...models.ReviewRecord) error {
	for _, batch := range utils.Chunk(records, utils.DYNAMODB_BATCH_SIZE) {
		if err := ctx.Err(); err != nil {
			slog.Warn("[DynamoDB] context canceled")
			return err
		}
		if err := s.writeBatch(ctx, batch); err != nil {
			return err
		}
	}

	slog.Debug("[DynamoDB] Stored reviews", slog.Int("count", len(records)))
	return nil
}

func (s *DynamoStore) writeBatch(ctx context.Context, batch []models.ReviewRecord) error {
	writeRequests := make([]types.WriteRequest, 0, len(batch))
	for _, record := range batch {
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to marshal review %s: %w", record.ID, err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.table: writeRequests},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write reviews: %w", err)
	}

	retryCount := 0
	backoff := s.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < maxUnprocessedRetries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.Int("retry_attempt", retryCount+1),
			slog.Int("remaining_items", len(out.UnprocessedItems[s.table])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
		slog.Error("[DynamoDB] Some items were not written even after retries",
			slog.Int("remaining_items", remaining))
		return fmt.Errorf("[DynamoDB] %d reviews unprocessed after %d retries", remaining, maxUnprocessedRetries)
	}
	return nil
}

func (s *DynamoStore) ReadAll(ctx context.Context) ([]models.ReviewRecord, error) {
	return s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.table)})
}

func (s *DynamoStore) ReadRange(ctx context.Context, start, end time.Time) ([]models.ReviewRecord, error) {
	return s.scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("#ts >= :start AND #ts < :end"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start": &types.AttributeValueMemberN{Value: strconv.FormatInt(start.Unix(), 10)},
			":end":   &types.AttributeValueMemberN{Value: strconv.FormatInt(end.Unix(), 10)},
		},
	})
}

func (s *DynamoStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	paginator := dynamodb.NewScanPaginator(s.client, input)

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for reviews failed: %w", err)
		}
		var page []models.ReviewRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal review page", slog.String("error", err.Error()))
			return nil, err
		}
		records = append(records, page...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	slog.Debug("[DynamoDB] Retrieved reviews", slog.Int("count", len(records)))
	return records, nil
}

func (s *DynamoStore) Close() error { return nil }
