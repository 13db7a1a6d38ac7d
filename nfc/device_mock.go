package nfc

import (
	"fmt"
	"sync"
)

// MockDevice is a test implementation of Device that simulates NFC hardware.
//
// Example:
//
//	mock := nfc.NewMockDevice()
//	mock.Tags = []nfc.Tag{nfc.NewMockTag([]byte{0x04, 0xA3, 0x2B, 0x9C})}
//	tags, _ := mock.GetTags()
type MockDevice struct {
	// DeviceName is the simulated device name returned by String()
	DeviceName string

	// DeviceConnection is the simulated connection string returned by Connection()
	DeviceConnection string

	// IsOpen tracks whether the device is currently open
	IsOpen bool

	// InitError, if set, will be returned by InitiatorInit()
	InitError error

	// GetTagsFunc allows custom GetTags behavior for testing
	// If nil, returns Tags or GetTagsError
	GetTagsFunc func() ([]Tag, error)

	// Tags is the list of tags returned by GetTags()
	Tags []Tag

	// GetTagsError, if set, will be returned by GetTags()
	GetTagsError error

	// CallLog tracks all method calls for verification in tests
	CallLog []string

	mu sync.Mutex
}

var _ Device = (*MockDevice)(nil)

// NewMockDevice creates a new MockDevice with default values.
func NewMockDevice() *MockDevice {
	return &MockDevice{
		DeviceName:       "Mock NFC Reader",
		DeviceConnection: "mock:usb:001",
		IsOpen:           true,
		CallLog:          make([]string, 0),
	}
}

// Close simulates closing the device.
func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "Close")
	if !m.IsOpen {
		return fmt.Errorf("device already closed")
	}
	m.IsOpen = false
	return nil
}

// InitiatorInit simulates initializing the device as an initiator.
func (m *MockDevice) InitiatorInit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallLog = append(m.CallLog, "InitiatorInit")
	if m.InitError != nil {
		return m.InitError
	}
	// A reopened device starts out open again.
	m.IsOpen = true
	return nil
}

func (m *MockDevice) String() string {
	return m.DeviceName
}

func (m *MockDevice) Connection() string {
	return m.DeviceConnection
}

// GetTags simulates polling for tags.
func (m *MockDevice) GetTags() ([]Tag, error) {
	m.mu.Lock()
	fn := m.GetTagsFunc
	m.CallLog = append(m.CallLog, "GetTags")
	if !m.IsOpen {
		m.mu.Unlock()
		return nil, fmt.Errorf("device closed")
	}
	tags, err := m.Tags, m.GetTagsError
	m.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return tags, err
}

// SetTags replaces the tags currently in the field.
func (m *MockDevice) SetTags(tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tags = tags
}

// Calls returns a copy of the call log.
func (m *MockDevice) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// MockManager is a test implementation of Manager that hands out a fixed device.
type MockManager struct {
	// Device is returned by OpenDevice
	Device Device

	// Devices is returned by ListDevices
	Devices []string

	// OpenError, if set, will be returned by OpenDevice()
	OpenError error

	// OpenCount counts OpenDevice calls
	OpenCount int

	mu sync.Mutex
}

var _ Manager = (*MockManager)(nil)

// NewMockManager creates a MockManager that opens dev.
func NewMockManager(dev Device) *MockManager {
	return &MockManager{
		Device:  dev,
		Devices: []string{"mock:usb:001"},
	}
}

func (m *MockManager) OpenDevice(deviceStr string) (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OpenCount++
	if m.OpenError != nil {
		return nil, m.OpenError
	}
	if m.Device == nil {
		return nil, fmt.Errorf("no mock device configured")
	}
	return m.Device, nil
}

func (m *MockManager) ListDevices() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Devices...), nil
}

// Opens returns how many times OpenDevice was called.
func (m *MockManager) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.OpenCount
}
