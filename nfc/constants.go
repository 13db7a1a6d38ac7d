package nfc

import "time"

// Tag type names reported by Tag.Type
const (
	TagTypeMifareUltralight  = "MIFARE Ultralight"
	TagTypeMifareUltralightC = "MIFARE Ultralight C"
	TagTypeISO14443A         = "ISO14443A"
)

// Device enumeration and polling
const (
	DeviceEnumRetries      = 3
	DefaultPollingInterval = 250 * time.Millisecond
	DeviceRetryDelay       = 2 * time.Second
)

// Type 2 tag memory layout (MIFARE Ultralight family)
const (
	ultralightFirstDataPage = 4  // pages 0-3 hold UID, lock bytes and capability container
	ultralightPages         = 16 // 64 bytes
	ultralightCPages        = 48 // 192 bytes, minus the 3DES key area
)
