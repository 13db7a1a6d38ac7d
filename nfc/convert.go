package nfc

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatTagID renders a hardware id as colon-separated uppercase hex,
// e.g. "04:A3:2B:9C". An empty id yields "".
func FormatTagID(id []byte) string {
	if len(id) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(id)*3 - 1)
	for i, b := range id {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// ParseTagID decodes a tag id written as hex in any of the common forms:
// "04:AB:CD:EF", "04ABCDEF", "04 AB CD EF" or "04-AB-CD-EF".
func ParseTagID(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty tag id")
	}

	cleaned := strings.NewReplacer(":", "", " ", "", "-", "").Replace(s)
	if cleaned == "" {
		return nil, fmt.Errorf("tag id has no hex digits: %q", s)
	}
	if len(cleaned)%2 != 0 {
		return nil, fmt.Errorf("tag id has odd number of hex characters: %q", s)
	}

	id, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("tag id contains invalid characters: %q: %w", s, err)
	}
	return id, nil
}
