package nfc

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/clausecker/freefare"
	"github.com/clausecker/nfc/v2"
	"github.com/rs/zerolog/log"
)

// defaultManager implements Manager using libnfc and freefare libraries.
type defaultManager struct{}

func (m *defaultManager) OpenDevice(deviceStr string) (Device, error) {
	dev, err := nfc.Open(deviceStr)
	if err != nil {
		return nil, fmt.Errorf("open NFC device %q: %w", deviceStr, err)
	}
	return &libnfcDevice{device: dev}, nil
}

func (m *defaultManager) ListDevices() ([]string, error) {
	var devices []string
	var err error
	for i := 0; i < DeviceEnumRetries; i++ {
		devices, err = nfc.ListDevices()
		if err == nil {
			return devices, nil
		}
		time.Sleep(time.Millisecond * 100)
	}
	return nil, fmt.Errorf("failed to list NFC devices after %d retries: %w", DeviceEnumRetries, err)
}

// libnfcDevice implements Device using an actual nfc.Device from libnfc.
type libnfcDevice struct {
	device nfc.Device
}

func (d *libnfcDevice) Close() error {
	return d.device.Close()
}

func (d *libnfcDevice) InitiatorInit() error {
	return d.device.InitiatorInit()
}

func (d *libnfcDevice) String() string {
	return d.device.String()
}

func (d *libnfcDevice) Connection() string {
	return d.device.Connection()
}

// GetTags polls for tags on the device.
// Ultralight-family tags found by freefare get a full NDEF reader; every other
// ISO14443A target is reported by hardware id only, which the scan pipeline
// turns into a tag id fallback.
func (d *libnfcDevice) GetTags() ([]Tag, error) {
	var found []Tag
	seen := make(map[string]bool)

	ffTags, ffErr := freefare.GetTags(d.device)
	if ffErr != nil {
		log.Debug().Err(ffErr).Msg("freefare tag enumeration failed")
	}
	for _, ffTag := range ffTags {
		id, err := hex.DecodeString(ffTag.UID())
		if err != nil || len(id) == 0 {
			log.Warn().Str("uid", ffTag.UID()).Msg("skipping tag with undecodable UID")
			continue
		}
		key := FormatTagID(id)
		if seen[key] {
			continue
		}
		seen[key] = true

		switch t := ffTag.(type) {
		case freefare.UltralightTag:
			found = append(found, newUltralightTag(t, id))
		case freefare.ClassicTag:
			found = append(found, &uidTag{id: id, tagType: "MIFARE Classic"})
		case freefare.DESFireTag:
			found = append(found, &uidTag{id: id, tagType: "DESFire"})
		default:
			found = append(found, &uidTag{id: id, tagType: fmt.Sprintf("%T", t)})
		}
	}

	modulation := nfc.Modulation{Type: nfc.ISO14443a, BaudRate: nfc.Nbr106}
	targets, listErr := d.device.InitiatorListPassiveTargets(modulation)
	if listErr != nil {
		if ffErr != nil && len(found) == 0 {
			return nil, fmt.Errorf("error from freefare (%v) AND passive targets (%w)", ffErr, listErr)
		}
		log.Debug().Err(listErr).Msg("listing passive targets failed")
		return found, nil
	}

	for _, target := range targets {
		isoA, ok := target.(*nfc.ISO14443aTarget)
		if !ok {
			continue
		}
		if isoA.UIDLen <= 0 || int(isoA.UIDLen) > len(isoA.UID) {
			continue
		}
		id := make([]byte, isoA.UIDLen)
		copy(id, isoA.UID[:isoA.UIDLen])
		key := FormatTagID(id)
		if seen[key] {
			continue
		}
		seen[key] = true
		found = append(found, &uidTag{id: id, tagType: TagTypeISO14443A})
	}

	return found, nil
}

// uidTag is a detected tag whose memory we cannot read as NDEF.
type uidTag struct {
	id      []byte
	tagType string
}

func (t *uidTag) ID() []byte        { return t.id }
func (t *uidTag) Type() string      { return t.tagType }
func (t *uidTag) Connect() error    { return nil }
func (t *uidTag) Disconnect() error { return nil }

func (t *uidTag) ReadNDEF() ([]byte, error) {
	return nil, NewNotSupportedError("ReadNDEF")
}
