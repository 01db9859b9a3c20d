package aurora

import (
	"context"
	"errors"
	"testing"

	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	output *rdsdata.ExecuteStatementOutput
	err    error
	inputs []*rdsdata.ExecuteStatementInput
}

func (f *fakeAPI) ExecuteStatement(_ context.Context, params *rdsdata.ExecuteStatementInput, _ ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &rdsdata.ExecuteStatementOutput{}, nil
}

var testConn = Connection{
	ResourceARN: "arn:aws:rds:us-east-1:123456789012:cluster:tablescout",
	SecretARN:   "arn:aws:secretsmanager:us-east-1:123456789012:secret:tablescout",
	Database:    "tablescout",
}

func newTestClient(api *fakeAPI) *Client {
	return NewClient(api, testConn, zap.NewNop())
}

func column(name string) rdstypes.ColumnMetadata {
	return rdstypes.ColumnMetadata{Name: aws.String(name)}
}

func TestExecuteQuery_ZipsColumnsWithRows(t *testing.T) {
	api := &fakeAPI{output: &rdsdata.ExecuteStatementOutput{
		ColumnMetadata: []rdstypes.ColumnMetadata{column("id"), column("count")},
		Records: [][]rdstypes.Field{
			{
				&rdstypes.FieldMemberStringValue{Value: "a"},
				&rdstypes.FieldMemberIsNull{Value: true},
			},
		},
	}}
	client := newTestClient(api)

	records, err := client.ExecuteQuery(context.Background(), "SELECT id, count FROM reviews", nil)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0]["id"])
	value, present := records[0]["count"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestExecuteQuery_IndependentOfColumnOrder(t *testing.T) {
	// Same data with metadata and rows consistently reordered.
	api := &fakeAPI{output: &rdsdata.ExecuteStatementOutput{
		ColumnMetadata: []rdstypes.ColumnMetadata{column("count"), column("id")},
		Records: [][]rdstypes.Field{
			{
				&rdstypes.FieldMemberIsNull{Value: true},
				&rdstypes.FieldMemberStringValue{Value: "a"},
			},
		},
	}}
	client := newTestClient(api)

	records, err := client.ExecuteQuery(context.Background(), "SELECT count, id FROM reviews", nil)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0]["id"])
	assert.Nil(t, records[0]["count"])
}

func TestExecuteQuery_AllFieldKinds(t *testing.T) {
	api := &fakeAPI{output: &rdsdata.ExecuteStatementOutput{
		ColumnMetadata: []rdstypes.ColumnMetadata{
			column("name"), column("rating"), column("score"), column("open"), column("raw"),
		},
		Records: [][]rdstypes.Field{
			{
				&rdstypes.FieldMemberStringValue{Value: "Noodle Bar"},
				&rdstypes.FieldMemberLongValue{Value: 4},
				&rdstypes.FieldMemberDoubleValue{Value: 4.5},
				&rdstypes.FieldMemberBooleanValue{Value: true},
				&rdstypes.FieldMemberBlobValue{Value: []byte{0x01}},
			},
		},
	}}
	client := newTestClient(api)

	records, err := client.ExecuteQuery(context.Background(), "SELECT * FROM restaurants", nil)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Noodle Bar", records[0]["name"])
	assert.Equal(t, int64(4), records[0]["rating"])
	assert.Equal(t, 4.5, records[0]["score"])
	assert.Equal(t, true, records[0]["open"])
	assert.Equal(t, []byte{0x01}, records[0]["raw"])
}

func TestExecuteQuery_PrefersColumnLabel(t *testing.T) {
	api := &fakeAPI{output: &rdsdata.ExecuteStatementOutput{
		ColumnMetadata: []rdstypes.ColumnMetadata{
			{Name: aws.String("count(*)"), Label: aws.String("total")},
		},
		Records: [][]rdstypes.Field{{&rdstypes.FieldMemberLongValue{Value: 7}}},
	}}
	client := newTestClient(api)

	records, err := client.ExecuteQuery(context.Background(), "SELECT count(*) AS total FROM reviews", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(7), records[0]["total"])
}

func TestExecuteQuery_NoRowsIsEmptySliceNotNil(t *testing.T) {
	client := newTestClient(&fakeAPI{})

	records, err := client.ExecuteQuery(context.Background(), "SELECT * FROM reviews", nil)

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestExecuteQuery_RequestsResultMetadata(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(api)

	_, err := client.ExecuteQuery(context.Background(), "SELECT 1", nil)

	require.NoError(t, err)
	require.Len(t, api.inputs, 1)
	input := api.inputs[0]
	assert.True(t, input.IncludeResultMetadata)
	assert.Equal(t, testConn.ResourceARN, aws.ToString(input.ResourceArn))
	assert.Equal(t, testConn.SecretARN, aws.ToString(input.SecretArn))
	assert.Equal(t, testConn.Database, aws.ToString(input.Database))
}

func TestExecuteQuery_FailureCarriesSQL(t *testing.T) {
	cause := errors.New("access denied")
	client := newTestClient(&fakeAPI{err: cause})

	_, err := client.ExecuteQuery(context.Background(), "SELECT secret FROM vault", nil)

	require.Error(t, err)
	assert.True(t, appErrors.IsRelationalStore(err))
	assert.ErrorIs(t, err, cause)

	var relErr *appErrors.RelationalStoreError
	require.True(t, errors.As(err, &relErr))
	assert.Equal(t, "SELECT secret FROM vault", relErr.SQL)
}

func TestExecuteStatement_ReturnsAffectedRows(t *testing.T) {
	api := &fakeAPI{output: &rdsdata.ExecuteStatementOutput{NumberOfRecordsUpdated: 3}}
	client := newTestClient(api)

	affected, err := client.ExecuteStatement(context.Background(),
		"UPDATE reviews SET flagged = :flagged", map[string]any{"flagged": true})

	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}

func TestExecuteStatement_OmittedCountIsZero(t *testing.T) {
	client := newTestClient(&fakeAPI{})

	affected, err := client.ExecuteStatement(context.Background(), "CREATE TABLE t (id int)", nil)

	require.NoError(t, err)
	assert.Zero(t, affected)
}
