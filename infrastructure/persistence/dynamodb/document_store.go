package dynamodb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"sheethub/domain/workbook"
	apperrors "sheethub/pkg/errors"
)

// DocumentStore persists sessions in DynamoDB, one item per share code
// with the sheet collection serialized as a JSON document. PutItem gives
// the per-code atomic replace the engine relies on.
//
// Table schema: partition key "ShareCode" (string), no sort key.
type DocumentStore struct {
	client *awsdynamodb.Client
	table  string
	logger *zap.Logger
}

// sessionItem is the DynamoDB representation of one session.
type sessionItem struct {
	ShareCode string `dynamodbav:"ShareCode"`
	Sheets    string `dynamodbav:"Sheets"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// NewDocumentStore creates a DynamoDB-backed document store.
func NewDocumentStore(client *awsdynamodb.Client, table string, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{
		client: client,
		table:  table,
		logger: logger,
	}
}

// GetSheets loads the collection for a share code. A missing item yields
// an empty collection.
func (s *DocumentStore) GetSheets(ctx context.Context, shareCode string) ([]workbook.Sheet, error) {
	out, err := s.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"ShareCode": &types.AttributeValueMemberS{Value: shareCode},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to get session item").WithCause(err)
	}
	if out.Item == nil {
		return []workbook.Sheet{}, nil
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewDatabaseError("failed to unmarshal session item").WithCause(err)
	}

	sheets := []workbook.Sheet{}
	if err := json.Unmarshal([]byte(item.Sheets), &sheets); err != nil {
		return nil, apperrors.NewDatabaseError("corrupt session item").WithCause(err)
	}
	return sheets, nil
}

// ReplaceSheets overwrites a share code's item with the given collection.
func (s *DocumentStore) ReplaceSheets(ctx context.Context, shareCode string, sheets []workbook.Sheet) error {
	data, err := json.Marshal(sheets)
	if err != nil {
		return apperrors.NewInternalError("failed to encode sheet collection").WithCause(err)
	}

	item, err := attributevalue.MarshalMap(sessionItem{
		ShareCode: shareCode,
		Sheets:    string(data),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return apperrors.NewDatabaseError("failed to marshal session item").WithCause(err)
	}

	if _, err := s.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return apperrors.NewDatabaseError("failed to put session item").WithCause(err)
	}

	s.logger.Debug("session replaced",
		zap.String("shareCode", shareCode),
		zap.Int("sheets", len(sheets)),
	)
	return nil
}

// CreateSession stores the initial collection for a new share code.
func (s *DocumentStore) CreateSession(ctx context.Context, shareCode string, sheets []workbook.Sheet) error {
	return s.ReplaceSheets(ctx, shareCode, sheets)
}

// DeleteSession removes a share code's item.
func (s *DocumentStore) DeleteSession(ctx context.Context, shareCode string) error {
	if _, err := s.client.DeleteItem(ctx, &awsdynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"ShareCode": &types.AttributeValueMemberS{Value: shareCode},
		},
	}); err != nil {
		return apperrors.NewDatabaseError("failed to delete session item").WithCause(err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no closable resources.
func (s *DocumentStore) Close() error {
	return nil
}
