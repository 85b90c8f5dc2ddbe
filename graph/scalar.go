package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTime is the DateTime scalar, serialized as an RFC 3339 string in UTC.
type DateTime struct {
	time.Time
}

// ImplementsGraphQLType maps this type to the DateTime scalar.
func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

// UnmarshalGraphQL accepts RFC 3339 strings and Unix seconds.
func (t *DateTime) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case time.Time:
		t.Time = v
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return err
		}
		t.Time = parsed
	case int32:
		t.Time = time.Unix(int64(v), 0)
	case int64:
		t.Time = time.Unix(v, 0)
	case float64:
		t.Time = time.Unix(int64(v), 0)
	default:
		return fmt.Errorf("wrong type for DateTime: %T", v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
