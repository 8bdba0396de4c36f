package internal

import (
	"chat-client/domain"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// InspectRow is one entry of the local cache, flattened for display.
type InspectRow struct {
	Key         string
	Type        string
	Timestamp   string
	Participant string
	EntityID    string
	Detail      string
}

type RowMapper func(key string, val []byte) InspectRow

// Inspect lists the cache entries under prefix in key order.
func Inspect(db *badger.DB, prefix string, mapper RowMapper) ([]InspectRow, error) {
	if mapper == nil {
		mapper = DefaultMapper
	}
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				rows = append(rows, mapper(string(item.KeyCopy(nil)), val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// DefaultMapper understands the history keys "msg:{participant}:{nanos}:{id}"
// and the saved session. Anything else is shown raw.
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:         key,
		Type:        "RAW",
		Timestamp:   "--:--:--",
		Participant: "-",
		EntityID:    "--------",
		Detail:      "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.Split(key, ":")
	switch {
	case len(parts) >= 4 && parts[0] == "msg":
		row.Type = "MESSAGE"
		row.Participant = parts[1]
		if nanos, err := strconv.ParseInt(parts[2], 10, 64); err == nil && nanos > 0 {
			row.Timestamp = time.Unix(0, nanos).Format(time.DateTime)
		}
		row.EntityID = shorten(parts[3])
		var msg domain.Message
		if err := json.Unmarshal(val, &msg); err == nil {
			row.Detail = msg.SenderID + ": " + msg.Content
		}
	case parts[0] == "session":
		row.Type = "SESSION"
		var session struct {
			User domain.User `json:"user"`
		}
		if err := json.Unmarshal(val, &session); err == nil {
			row.EntityID = shorten(session.User.ID)
			row.Detail = session.User.Username
		}
	}
	return row
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
