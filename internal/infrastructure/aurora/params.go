package aurora

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
)

// ToParameters converts a name-keyed value map into typed SQL parameters,
// sorted by name so statement inputs are deterministic.
func ToParameters(params map[string]any) []rdstypes.SqlParameter {
	if len(params) == 0 {
		return nil
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	converted := make([]rdstypes.SqlParameter, 0, len(names))
	for _, name := range names {
		converted = append(converted, rdstypes.SqlParameter{
			Name:  aws.String(name),
			Value: ToField(params[name]),
		})
	}
	return converted
}

// ToField performs the type-directed conversion of a Go value into exactly
// one populated value slot:
//
//	nil            -> null
//	string         -> string
//	integer kinds  -> long
//	float, whole   -> long
//	float          -> double
//	bool           -> boolean
//	[]byte         -> blob
//	time.Time      -> ISO-8601 string
//	anything else  -> JSON string, falling back to a string cast
func ToField(value any) rdstypes.Field {
	switch v := value.(type) {
	case nil:
		return &rdstypes.FieldMemberIsNull{Value: true}
	case string:
		return &rdstypes.FieldMemberStringValue{Value: v}
	case bool:
		return &rdstypes.FieldMemberBooleanValue{Value: v}
	case int:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case int8:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case int16:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case int32:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case int64:
		return &rdstypes.FieldMemberLongValue{Value: v}
	case uint:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case uint8:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case uint16:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case uint32:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case uint64:
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	case float32:
		return floatField(float64(v))
	case float64:
		return floatField(v)
	case []byte:
		return &rdstypes.FieldMemberBlobValue{Value: v}
	case time.Time:
		return &rdstypes.FieldMemberStringValue{Value: v.UTC().Format(time.RFC3339Nano)}
	default:
		if encoded, err := json.Marshal(v); err == nil {
			return &rdstypes.FieldMemberStringValue{Value: string(encoded)}
		}
		return &rdstypes.FieldMemberStringValue{Value: fmt.Sprintf("%v", v)}
	}
}

// floatField maps whole-number floats to the long slot, matching how the
// store's numeric columns are written by other producers.
func floatField(v float64) rdstypes.Field {
	if v == math.Trunc(v) && !math.IsInf(v, 0) && !math.IsNaN(v) &&
		v >= math.MinInt64 && v <= math.MaxInt64 {
		return &rdstypes.FieldMemberLongValue{Value: int64(v)}
	}
	return &rdstypes.FieldMemberDoubleValue{Value: v}
}
