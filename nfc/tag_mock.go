package nfc

import (
	"bytes"
	"sync"
)

// MockTag is a test implementation of Tag that simulates NFC tag behavior.
//
// MockTag allows testing the scan pipeline without physical tags by providing
// configurable responses for connect/read/disconnect.
//
// Example:
//
//	tag := nfc.NewMockTag([]byte{0x04, 0xA3, 0x2B, 0x9C})
//	tag.NDEF = rawMessage
//	raw, _ := nfc.ReadNDEFFromTag(tag)
type MockTag struct {
	// TagID is the id returned by ID()
	TagID []byte

	// TagType is the type string returned by Type()
	TagType string

	// NDEF is the message returned by ReadNDEF()
	NDEF []byte

	// ReadError, if set, will be returned by ReadNDEF()
	ReadError error

	// ConnectError, if set, will be returned by Connect()
	ConnectError error

	// DisconnectError, if set, will be returned by Disconnect()
	DisconnectError error

	// IsConnected tracks whether the tag is currently connected
	IsConnected bool

	// CallLog tracks all method calls for verification in tests
	CallLog []string

	mu sync.Mutex
}

var _ Tag = (*MockTag)(nil)

// NewMockTag creates a new MockTag with default values.
func NewMockTag(id []byte) *MockTag {
	return &MockTag{
		TagID:   id,
		TagType: "Mock Tag",
		CallLog: make([]string, 0),
	}
}

// ID returns the tag's hardware id.
func (m *MockTag) ID() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "ID")
	return bytes.Clone(m.TagID)
}

// Type returns the tag's type string.
func (m *MockTag) Type() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "Type")
	return m.TagType
}

// Connect simulates connecting to the tag.
func (m *MockTag) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "Connect")
	if m.ConnectError != nil {
		return m.ConnectError
	}
	m.IsConnected = true
	return nil
}

// Disconnect simulates disconnecting from the tag.
func (m *MockTag) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "Disconnect")
	m.IsConnected = false
	return m.DisconnectError
}

// ReadNDEF simulates reading the NDEF message from the tag.
func (m *MockTag) ReadNDEF() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "ReadNDEF")

	if !m.IsConnected {
		return nil, WrapError(ErrCodeTagNotConnected, "ReadNDEF", "tag not connected", nil)
	}
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	return bytes.Clone(m.NDEF), nil
}

// Calls returns a copy of the call log.
func (m *MockTag) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// Connected reports whether the tag is currently connected.
func (m *MockTag) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IsConnected
}
