package rest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	ddb "tablescout-backend/internal/infrastructure/dynamodb"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Pagination cursors are the store's last-evaluated key, base64-encoded so
// clients can pass them back opaquely. All key attributes in this table are
// strings.
func encodeCursor(key ddb.Key) (string, error) {
	plain := make(map[string]string, len(key))
	for name, value := range key {
		s, ok := value.(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("unsupported cursor attribute type for %s", name)
		}
		plain[name] = s.Value
	}

	encoded, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("encoding cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(encoded), nil
}

func decodeCursor(raw string) (ddb.Key, error) {
	if raw == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding cursor: %w", err)
	}

	var plain map[string]string
	if err := json.Unmarshal(decoded, &plain); err != nil {
		return nil, fmt.Errorf("decoding cursor: %w", err)
	}

	key := make(ddb.Key, len(plain))
	for name, value := range plain {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key, nil
}
