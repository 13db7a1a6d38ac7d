package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseHexMessage decodes an NDEF message given as hex, ignoring whitespace
// and colon separators. An empty string yields nil.
func ParseHexMessage(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil, nil
	}
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid NDEF hex: %w", err)
	}
	return data, nil
}
