// Package dynamodb implements the key-value store adapter on AWS DynamoDB.
// This is the only layer that should have knowledge of DynamoDB specifics.
//
// The adapter performs no automatic retries: throttling, validation, and
// conditional failures are translated into the error taxonomy and left to
// the caller, since blind retry on a conditional failure without re-reading
// state would be incorrect.
package dynamodb

import (
	"context"
	"errors"

	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Item is a raw DynamoDB item. Callers use attributevalue.MarshalMap and
// UnmarshalMap to convert to their structs.
type Item = map[string]types.AttributeValue

// Key addresses a single item by partition key and optional sort key.
type Key = map[string]types.AttributeValue

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Condition is an optional predicate attached to a write. The write only
// succeeds if the expression evaluates true against the item's current state.
type Condition struct {
	Expression string
	Values     map[string]types.AttributeValue
	Names      map[string]string
}

// Store is a stateless adapter over a DynamoDB client. It is constructed
// once at process start and safe for concurrent use.
type Store struct {
	client API
	logger *zap.Logger
}

// NewStore creates a key-value store adapter.
func NewStore(client API, logger *zap.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// Get performs a point lookup. A missing item, or a missing table, yields
// (nil, nil) rather than an error.
func (s *Store) Get(ctx context.Context, table string, key Key) (Item, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		if isResourceNotFound(err) {
			return nil, nil
		}
		return nil, s.wrapError("GetItem", table, err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return result.Item, nil
}

// Put creates or overwrites an item. When cond is non-nil the write is
// conditional and a rejected predicate surfaces as a condition-failed error.
func (s *Store) Put(ctx context.Context, table string, item Item, cond *Condition) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}
	applyCondition(cond, &input.ConditionExpression, &input.ExpressionAttributeValues, &input.ExpressionAttributeNames)

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return s.wrapError("PutItem", table, err)
	}
	return nil
}

// Update applies a partial mutation described by updateExpr to the item at
// key. values binds the expression's placeholders; cond is optional.
func (s *Store) Update(ctx context.Context, table string, key Key, updateExpr string, values map[string]types.AttributeValue, cond *Condition) error {
	bound := make(map[string]types.AttributeValue, len(values))
	for name, value := range values {
		bound[name] = value
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: bound,
	}
	if cond != nil {
		input.ConditionExpression = aws.String(cond.Expression)
		for name, value := range cond.Values {
			bound[name] = value
		}
		if len(cond.Names) > 0 {
			input.ExpressionAttributeNames = cond.Names
		}
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return s.wrapError("UpdateItem", table, err)
	}
	return nil
}

// Delete removes the item at key, optionally guarded by cond.
func (s *Store) Delete(ctx context.Context, table string, key Key, cond *Condition) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       key,
	}
	applyCondition(cond, &input.ConditionExpression, &input.ExpressionAttributeValues, &input.ExpressionAttributeNames)

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		return s.wrapError("DeleteItem", table, err)
	}
	return nil
}

func applyCondition(cond *Condition, expr **string, values *map[string]types.AttributeValue, names *map[string]string) {
	if cond == nil {
		return
	}
	*expr = aws.String(cond.Expression)
	if len(cond.Values) > 0 {
		*values = cond.Values
	}
	if len(cond.Names) > 0 {
		*names = cond.Names
	}
}

// wrapError translates a backend failure into the error taxonomy. A failed
// conditional write, directly or inside a canceled transaction, becomes a
// condition-failed error; everything else is wrapped generically with the
// backend's error code preserved for diagnostics.
func (s *Store) wrapError(op, table string, err error) error {
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return appErrors.NewConditionFailed(op, table, err)
	}

	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return appErrors.NewConditionFailed(op, table, err)
			}
		}
	}

	message := "request failed"
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.ErrorCode()
	}
	s.logger.Error("dynamodb operation failed",
		zap.String("operation", op),
		zap.String("table", table),
		zap.Error(err),
	)
	return appErrors.NewKeyValueStore(op, table, message, err)
}

func isResourceNotFound(err error) bool {
	var notFound *types.ResourceNotFoundException
	return errors.As(err, &notFound)
}
