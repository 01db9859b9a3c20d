package dynamodb

import (
	"context"
	"fmt"

	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// maxBatchItems is the backend limit on items per BatchWriteItem call.
const maxBatchItems = 25

// BatchOp selects the write operation applied to every item in a batch.
type BatchOp string

const (
	BatchPut    BatchOp = "put"
	BatchDelete BatchOp = "delete"
)

// BatchWrite writes items to table in chunks of at most 25, one backend call
// per chunk, issued sequentially in list order. For BatchDelete the items
// are key maps. Chunks are not atomic across each other: a failure in a
// later chunk leaves earlier chunks applied.
func (s *Store) BatchWrite(ctx context.Context, table string, op BatchOp, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	for start := 0; start < len(items); start += maxBatchItems {
		end := start + maxBatchItems
		if end > len(items) {
			end = len(items)
		}
		if err := s.batchWriteChunk(ctx, table, op, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) batchWriteChunk(ctx context.Context, table string, op BatchOp, items []Item) error {
	requests := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		switch op {
		case BatchPut:
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		case BatchDelete:
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: item},
			})
		default:
			return appErrors.NewKeyValueStore("BatchWriteItem", table,
				fmt.Sprintf("unsupported batch operation %q", op), nil)
		}
	}

	result, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: requests},
	})
	if err != nil {
		return s.wrapError("BatchWriteItem", table, err)
	}

	// The adapter does not retry; surfacing unprocessed items keeps retry
	// policy with the caller.
	if unprocessed := len(result.UnprocessedItems[table]); unprocessed > 0 {
		s.logger.Warn("batch write left unprocessed items",
			zap.String("table", table),
			zap.Int("unprocessed", unprocessed),
		)
		return appErrors.NewKeyValueStore("BatchWriteItem", table,
			fmt.Sprintf("%d items unprocessed", unprocessed), nil)
	}
	return nil
}
