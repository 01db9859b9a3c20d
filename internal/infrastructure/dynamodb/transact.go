package dynamodb

import (
	"context"
	"fmt"

	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TransactKind identifies the operation a TransactItem performs.
type TransactKind string

const (
	TransactPut            TransactKind = "put"
	TransactUpdate         TransactKind = "update"
	TransactDelete         TransactKind = "delete"
	TransactConditionCheck TransactKind = "conditionCheck"
)

// TransactItem is one operation inside an atomic group. Put uses Item;
// Update, Delete, and ConditionCheck use Key. UpdateExpression and Values
// apply to Update only; Condition is optional for Put, Update, and Delete
// and required for ConditionCheck.
type TransactItem struct {
	Kind             TransactKind
	Table            string
	Item             Item
	Key              Key
	UpdateExpression string
	Values           Item
	Condition        *Condition
}

// TransactWrite commits all items atomically or none of them. A condition
// failure on any item surfaces as a single condition-failed error with zero
// items mutated.
func (s *Store) TransactWrite(ctx context.Context, items []TransactItem) error {
	if len(items) == 0 {
		return nil
	}

	writes := make([]types.TransactWriteItem, 0, len(items))
	for _, item := range items {
		write, err := item.toWriteItem()
		if err != nil {
			return err
		}
		writes = append(writes, write)
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		return s.wrapError("TransactWriteItems", items[0].Table, err)
	}
	return nil
}

func (t TransactItem) toWriteItem() (types.TransactWriteItem, error) {
	switch t.Kind {
	case TransactPut:
		put := &types.Put{
			TableName: aws.String(t.Table),
			Item:      t.Item,
		}
		applyCondition(t.Condition, &put.ConditionExpression, &put.ExpressionAttributeValues, &put.ExpressionAttributeNames)
		return types.TransactWriteItem{Put: put}, nil

	case TransactUpdate:
		bound := make(Item, len(t.Values))
		for name, value := range t.Values {
			bound[name] = value
		}
		update := &types.Update{
			TableName:                 aws.String(t.Table),
			Key:                       t.Key,
			UpdateExpression:          aws.String(t.UpdateExpression),
			ExpressionAttributeValues: bound,
		}
		if t.Condition != nil {
			update.ConditionExpression = aws.String(t.Condition.Expression)
			for name, value := range t.Condition.Values {
				bound[name] = value
			}
			if len(t.Condition.Names) > 0 {
				update.ExpressionAttributeNames = t.Condition.Names
			}
		}
		if len(bound) == 0 {
			update.ExpressionAttributeValues = nil
		}
		return types.TransactWriteItem{Update: update}, nil

	case TransactDelete:
		del := &types.Delete{
			TableName: aws.String(t.Table),
			Key:       t.Key,
		}
		applyCondition(t.Condition, &del.ConditionExpression, &del.ExpressionAttributeValues, &del.ExpressionAttributeNames)
		return types.TransactWriteItem{Delete: del}, nil

	case TransactConditionCheck:
		if t.Condition == nil {
			return types.TransactWriteItem{}, appErrors.NewKeyValueStore("TransactWriteItems", t.Table,
				"condition check item requires a condition", nil)
		}
		check := &types.ConditionCheck{
			TableName:           aws.String(t.Table),
			Key:                 t.Key,
			ConditionExpression: aws.String(t.Condition.Expression),
		}
		if len(t.Condition.Values) > 0 {
			check.ExpressionAttributeValues = t.Condition.Values
		}
		if len(t.Condition.Names) > 0 {
			check.ExpressionAttributeNames = t.Condition.Names
		}
		return types.TransactWriteItem{ConditionCheck: check}, nil

	default:
		return types.TransactWriteItem{}, appErrors.NewKeyValueStore("TransactWriteItems", t.Table,
			fmt.Sprintf("unsupported transaction item kind %q", t.Kind), nil)
	}
}
