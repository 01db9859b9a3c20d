// Package aurora implements the relational data adapter on the AWS RDS Data
// API, the stateless query-execution service for Aurora Serverless. Every
// call carries the full cluster and credential context; no session is held
// open between calls.
package aurora

import (
	"context"

	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"go.uber.org/zap"
)

// API is the subset of the RDS Data API client the adapter uses.
type API interface {
	ExecuteStatement(ctx context.Context, params *rdsdata.ExecuteStatementInput, optFns ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error)
}

// Connection identifies the target cluster, credentials, and database for
// every statement.
type Connection struct {
	ResourceARN string
	SecretARN   string
	Database    string
}

// Record is one row of a result set, keyed by column name. It is an alias
// so callers can consume results through their own interfaces without
// converting.
type Record = map[string]any

// Client is a stateless adapter over the RDS Data API, constructed once at
// process start and safe for concurrent use. No call performs retries.
type Client struct {
	api    API
	conn   Connection
	logger *zap.Logger
}

// NewClient creates a relational data adapter.
func NewClient(api API, conn Connection, logger *zap.Logger) *Client {
	return &Client{api: api, conn: conn, logger: logger}
}

// ExecuteQuery runs a parameterized statement and returns its rows as
// name-keyed records. The backend returns positional value arrays plus
// column metadata; the two are zipped by position, so record contents are
// independent of column order. An explicitly null value slot becomes a nil
// entry under its column name. No rows yields an empty, non-nil slice.
func (c *Client) ExecuteQuery(ctx context.Context, sql string, params map[string]any) ([]Record, error) {
	out, err := c.execute(ctx, sql, params, true)
	if err != nil {
		return nil, appErrors.NewRelationalStore("ExecuteQuery", sql, "query failed", err)
	}

	records := make([]Record, 0, len(out.Records))
	for _, row := range out.Records {
		record := make(Record, len(row))
		for position, field := range row {
			name := columnName(out.ColumnMetadata, position)
			record[name] = fieldValue(field)
		}
		records = append(records, record)
	}
	return records, nil
}

// ExecuteStatement runs DML without a result set and returns the number of
// affected rows (0 when the backend omits the count).
func (c *Client) ExecuteStatement(ctx context.Context, sql string, params map[string]any) (int64, error) {
	out, err := c.execute(ctx, sql, params, false)
	if err != nil {
		return 0, appErrors.NewRelationalStore("ExecuteStatement", sql, "statement failed", err)
	}
	return out.NumberOfRecordsUpdated, nil
}

func (c *Client) execute(ctx context.Context, sql string, params map[string]any, withMetadata bool) (*rdsdata.ExecuteStatementOutput, error) {
	out, err := c.api.ExecuteStatement(ctx, &rdsdata.ExecuteStatementInput{
		ResourceArn:           aws.String(c.conn.ResourceARN),
		SecretArn:             aws.String(c.conn.SecretARN),
		Database:              aws.String(c.conn.Database),
		Sql:                   aws.String(sql),
		Parameters:            ToParameters(params),
		IncludeResultMetadata: withMetadata,
	})
	if err != nil {
		c.logger.Error("rds data api call failed",
			zap.String("sql", sql),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

// columnName resolves the name for a value position, preferring the column
// label (set for aliased expressions) over the raw name.
func columnName(metadata []rdstypes.ColumnMetadata, position int) string {
	if position >= len(metadata) {
		return ""
	}
	column := metadata[position]
	if column.Label != nil && *column.Label != "" {
		return *column.Label
	}
	return aws.ToString(column.Name)
}

// fieldValue unwraps a typed value slot into a plain Go value.
func fieldValue(field rdstypes.Field) any {
	switch value := field.(type) {
	case *rdstypes.FieldMemberIsNull:
		return nil
	case *rdstypes.FieldMemberStringValue:
		return value.Value
	case *rdstypes.FieldMemberLongValue:
		return value.Value
	case *rdstypes.FieldMemberDoubleValue:
		return value.Value
	case *rdstypes.FieldMemberBooleanValue:
		return value.Value
	case *rdstypes.FieldMemberBlobValue:
		return value.Value
	default:
		return nil
	}
}
