package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const skDocument = "HTML#"

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// *dynamodb.Client satisfies it.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore keeps the document as one item. PutItem replaces the item
// atomically, so readers see either the old or the new document.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	key       string
	now       func() time.Time
}

func NewDynamoStore(api dynamodbAPI, tableName, key string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("store: dynamodb api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("store: table name must not be empty")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("store: document key must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, key: key, now: time.Now}, nil
}

// docPK returns the partition key for a document.
func docPK(key string) string {
	return "DOC#" + key
}

func (s *DynamoStore) itemKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: docPK(s.key)},
		"SK": &types.AttributeValueMemberS{Value: skDocument},
	}
}

func (s *DynamoStore) Load(ctx context.Context) ([]byte, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.itemKey(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("store: dynamodb get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docPK(s.key))
	}
	body, err := strAttr(out.Item, "body")
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (s *DynamoStore) Save(ctx context.Context, doc []byte) error {
	item := s.itemKey()
	item["body"] = &types.AttributeValueMemberS{Value: string(doc)}
	item["bytes"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", len(doc))}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)}

	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("store: dynamodb put item: %w", err)
	}
	return nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("store: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("store: attribute %q is not a string", key)
	}
	return s.Value, nil
}
