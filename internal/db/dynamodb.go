package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/tonecheck/internal/models"
)

const TALLY_TTL = 30 * 24 * time.Hour

// DynamoDBAPI is the subset of the DynamoDB client used by TallyStore.
type DynamoDBAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// TallyStore keeps per-day counts of classified tones. The table has the
// partition key "day" and the sort key "category".
type TallyStore struct {
	client    DynamoDBAPI
	tableName string
	now       func() time.Time
}

func NewTallyStore(client DynamoDBAPI, tableName string) *TallyStore {
	return &TallyStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

func (s *TallyStore) AddTallies(ctx context.Context, tallies []models.ToneTally) error {
	expiresAt := s.now().Add(TALLY_TTL).Unix()

	for _, tally := range tallies {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"day":      &types.AttributeValueMemberS{Value: tally.Day},
				"category": &types.AttributeValueMemberS{Value: tally.Category},
			},
			UpdateExpression: aws.String("ADD #count :n SET expires_at = :expires_at"),
			ExpressionAttributeNames: map[string]string{
				"#count": "count",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":n":          &types.AttributeValueMemberN{Value: strconv.FormatInt(tally.Count, 10)},
				":expires_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt, 10)},
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to update tally %s/%s: %w", tally.Day, tally.Category, err)
		}
	}

	slog.Info("[DynamoDB] Successfully stored tone tallies",
		slog.Int("count", len(tallies)))
	return nil
}

func (s *TallyStore) GetTallies(ctx context.Context, day string) ([]models.ToneTally, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("#day = :day"),
		ExpressionAttributeNames: map[string]string{
			"#day": "day",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":day": &types.AttributeValueMemberS{Value: day},
		},
	}

	var tallies []models.ToneTally
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Query for tallies failed: %w", err)
		}

		var page []models.ToneTally
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal tally page", slog.String("error", err.Error()))
			return nil, err
		}
		tallies = append(tallies, page...)
	}

	slog.Info("[DynamoDB] Successfully retrieved tallies",
		slog.String("day", day),
		slog.Int("count", len(tallies)))
	return tallies, nil
}
