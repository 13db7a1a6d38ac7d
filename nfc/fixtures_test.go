package nfc

// textPayload builds a text record payload from a status byte, language code
// and already encoded text.
func textPayload(status byte, lang string, text []byte) []byte {
	payload := []byte{status}
	payload = append(payload, lang...)
	return append(payload, text...)
}

// utf8Text builds a UTF-8 text record payload with the given language code.
func utf8Text(lang, text string) []byte {
	return textPayload(byte(len(lang)), lang, []byte(text))
}

// utf16BE encodes an ASCII string as big-endian UTF-16 without a BOM.
func utf16BE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

// shortRecord builds a short record (SR set) with the given TNF, type and payload.
func shortRecord(tnf TNF, typ, payload []byte) []byte {
	rec := []byte{headerSR | byte(tnf), byte(len(typ)), byte(len(payload))}
	rec = append(rec, typ...)
	return append(rec, payload...)
}

// textRecord builds a short well-known text record.
func textRecord(payload []byte) []byte {
	return shortRecord(TNFWellKnown, RTDText, payload)
}

// message concatenates records, setting MB on the first and ME on the last.
func message(records ...[]byte) []byte {
	var out []byte
	for i, rec := range records {
		rec = append([]byte(nil), rec...)
		if i == 0 {
			rec[0] |= headerMB
		}
		if i == len(records)-1 {
			rec[0] |= headerME
		}
		out = append(out, rec...)
	}
	return out
}

var testTagID = []byte{0x04, 0xA3, 0x2B, 0x9C}
