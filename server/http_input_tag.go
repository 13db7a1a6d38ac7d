package server

import (
	"bytes"
	"time"

	"github.com/dotside-studios/rccard-agent/nfc"
)

// HTTPInputTagType is the type string reported by HTTP-injected tags.
const HTTPInputTagType = "HTTP Input"

// HTTPInputTag implements nfc.Tag for HTTP-injected tag data.
// It is read-only and always "connected"; ReadNDEF returns the injected bytes.
type HTTPInputTag struct {
	id        []byte
	ndef      []byte
	scannedAt time.Time
	source    string // Source identifier (e.g., "http-api", "manual-tool")
}

var _ nfc.Tag = (*HTTPInputTag)(nil)

// NewHTTPInputTag creates a tag for an injected scan.
func NewHTTPInputTag(id, ndef []byte, source string) *HTTPInputTag {
	if source == "" {
		source = DefaultSource
	}
	return &HTTPInputTag{
		id:        bytes.Clone(id),
		ndef:      bytes.Clone(ndef),
		scannedAt: time.Now(),
		source:    source,
	}
}

// ID returns the tag's hardware identifier.
func (t *HTTPInputTag) ID() []byte {
	return bytes.Clone(t.id)
}

// Type returns the tag type as a string.
func (t *HTTPInputTag) Type() string {
	return HTTPInputTagType
}

// Connect is a no-op for HTTP input tags.
func (t *HTTPInputTag) Connect() error {
	return nil
}

// Disconnect is a no-op for HTTP input tags.
func (t *HTTPInputTag) Disconnect() error {
	return nil
}

// ReadNDEF returns the injected NDEF bytes, or nil when none were sent.
func (t *HTTPInputTag) ReadNDEF() ([]byte, error) {
	return bytes.Clone(t.ndef), nil
}

// ScannedAt returns the timestamp when this tag was received.
func (t *HTTPInputTag) ScannedAt() time.Time {
	return t.scannedAt
}

// Source returns the source identifier for this tag.
func (t *HTTPInputTag) Source() string {
	return t.source
}
