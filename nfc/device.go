package nfc

// Device represents an NFC reader/writer hardware device.
//
// A Device is obtained from a Manager and polls for tags in its field.
//
// Example:
//
//	manager := nfc.NewManager()
//	device, err := manager.OpenDevice("")
//	defer device.Close()
//	tags, err := device.GetTags()
type Device interface {
	Close() error
	InitiatorInit() error
	String() string
	Connection() string
	GetTags() ([]Tag, error)
}

// Manager handles NFC device discovery.
type Manager interface {
	OpenDevice(deviceStr string) (Device, error)
	ListDevices() ([]string, error)
}

// NewManager creates a new Manager using libnfc and libfreefare.
func NewManager() Manager {
	return &defaultManager{}
}
