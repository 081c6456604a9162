package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an external identifier (order, user, product). Upstream services send
// them either as JSON strings or as JSON numbers; both decode to the same
// textual form so they can be stored in TEXT columns unchanged.
type ID string

// UnmarshalJSON accepts "abc", 42 and null. Any other JSON type is an error.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("receipt: id must be a string or a number, got %s", data)
		}
		*id = ID(n.String())
		return nil
	}
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is absent.
func (id ID) IsZero() bool { return id == "" }

// ParseReceiptID parses a receipt id from a URL segment.
func ParseReceiptID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("receipt: invalid receipt id %q", s)
	}
	return id, nil
}
