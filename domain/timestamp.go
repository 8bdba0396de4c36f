package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Timestamp accepts the two encodings GraphQL servers use for dates:
// RFC 3339 strings and epoch milliseconds (as a number or a numeric string,
// integer, decimal or exponent form).
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("timestamp %s: %w", raw, err)
		}
		raw = unquoted
	}
	if raw == "" {
		*t = Timestamp{}
		return nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*t = NewTimestamp(time.UnixMilli(ms))
		return nil
	}
	if ms, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(ms, 0) && !math.IsNaN(ms) {
		*t = NewTimestamp(time.UnixMilli(int64(math.Round(ms))))
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", raw, err)
	}
	*t = NewTimestamp(parsed)
	return nil
}
