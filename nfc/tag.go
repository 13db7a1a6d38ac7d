package nfc

// Tag is a detected NFC tag as seen by the scan pipeline.
//
// ReadNDEF must only be called between Connect and Disconnect; use
// ReadNDEFFromTag rather than calling the three methods directly.
//
// Example:
//
//	tags, _ := device.GetTags()
//	for _, tag := range tags {
//	    raw, err := nfc.ReadNDEFFromTag(tag)
//	    result := nfc.Extract(tag.ID(), raw, nfc.ActionTagDiscovered)
//	}
type Tag interface {
	// ID returns the raw hardware identifier.
	ID() []byte
	// Type returns a human readable tag type, e.g. "MIFARE Ultralight".
	Type() string
	Connect() error
	Disconnect() error
	// ReadNDEF returns the tag's NDEF message bytes, or nil when the tag is
	// formatted but empty. Tags without NDEF support return a not-supported error.
	ReadNDEF() ([]byte, error)
}

// ReadNDEFFromTag connects to the tag, reads its NDEF message and disconnects
// again. The tag is disconnected on every path once Connect has succeeded,
// including a failed read.
func ReadNDEFFromTag(tag Tag) ([]byte, error) {
	uid := FormatTagID(tag.ID())

	if err := tag.Connect(); err != nil {
		return nil, NewReadError("Connect", uid, err)
	}
	defer tag.Disconnect()

	data, err := tag.ReadNDEF()
	if err != nil {
		if IsNotSupportedError(err) {
			return nil, err
		}
		return nil, NewReadError("ReadNDEF", uid, err)
	}
	return data, nil
}
