package nfc

// TLV types found in NFC Forum Type 2 tag memory
const (
	TLVNull        = 0x00 // Null TLV
	TLVLockCtrl    = 0x01 // Lock Control TLV
	TLVMemCtrl     = 0x02 // Memory Control TLV
	TLVNDEF        = 0x03 // NDEF Message TLV
	TLVProprietary = 0xFD // Proprietary TLV
	TLVTerminator  = 0xFE // Terminator TLV
)

// TLVRecordLength returns the offset of the length field and the offset of
// the value, both relative to the type byte at data[0].
// Returns (0, 0) if the TLV is malformed.
func TLVRecordLength(data []byte) (fls, fvs int) {
	if len(data) < 2 {
		return 0, 0
	}

	fls = 1
	if data[1] == 0xFF {
		// Long format: 0xFF + 2 bytes
		if len(data) < 4 {
			return 0, 0
		}
		return fls, 4
	}
	return fls, 2
}

// TLVGetLength extracts the value length from a TLV starting at its type byte.
func TLVGetLength(data []byte) int {
	if len(data) < 2 {
		return 0
	}
	if data[1] == 0xFF {
		if len(data) < 4 {
			return 0
		}
		return int(data[2])<<8 | int(data[3])
	}
	return int(data[1])
}

// TLVFindNDEF scans a TLV block and returns the value of the first NDEF
// Message TLV. Returns false when the block ends, hits a terminator, or is
// truncated before one is found.
func TLVFindNDEF(data []byte) ([]byte, bool) {
	offset := 0

	for offset < len(data) {
		switch data[offset] {
		case TLVNull:
			offset++
			continue
		case TLVTerminator:
			return nil, false
		}

		_, fvs := TLVRecordLength(data[offset:])
		if fvs == 0 {
			return nil, false
		}

		length := TLVGetLength(data[offset:])
		valueStart := offset + fvs
		if valueStart+length > len(data) {
			return nil, false
		}

		if data[offset] == TLVNDEF {
			return data[valueStart : valueStart+length], true
		}
		offset = valueStart + length
	}

	return nil, false
}
