package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// QuerySpec describes a bounded read over a table or one of its indexes.
// KeyCondition is required; everything else is optional.
type QuerySpec struct {
	Table        string
	Index        string
	KeyCondition string
	Filter       string
	Projection   string
	Names        map[string]string
	Values       Item
	Limit        int32
	// Descending reverses the scan over the sort key.
	Descending bool
	// StartKey resumes a paginated read from a previous LastKey.
	StartKey Key
	// ConsistentRead requests a strongly consistent read; not supported on
	// global secondary indexes.
	ConsistentRead bool
}

// Query executes spec and returns the matching items plus the pagination
// cursor for the next page (nil when the result set is exhausted). The item
// slice is never nil.
func (s *Store) Query(ctx context.Context, spec QuerySpec) ([]Item, Key, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(spec.Table),
		KeyConditionExpression:    aws.String(spec.KeyCondition),
		ExpressionAttributeValues: spec.Values,
	}
	if spec.Index != "" {
		input.IndexName = aws.String(spec.Index)
	}
	if spec.Filter != "" {
		input.FilterExpression = aws.String(spec.Filter)
	}
	if spec.Projection != "" {
		input.ProjectionExpression = aws.String(spec.Projection)
	}
	if len(spec.Names) > 0 {
		input.ExpressionAttributeNames = spec.Names
	}
	if spec.Limit > 0 {
		input.Limit = aws.Int32(spec.Limit)
	}
	if spec.Descending {
		input.ScanIndexForward = aws.Bool(false)
	}
	if spec.StartKey != nil {
		input.ExclusiveStartKey = spec.StartKey
	}
	if spec.ConsistentRead {
		input.ConsistentRead = aws.Bool(true)
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, nil, s.wrapError("Query", spec.Table, err)
	}

	items := make([]Item, 0, len(result.Items))
	items = append(items, result.Items...)
	return items, result.LastEvaluatedKey, nil
}
