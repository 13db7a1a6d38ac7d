package nfc

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Text record status byte
const (
	textStatusUTF16    = 0x80 // bit 7: text is UTF-16
	textStatusLangMask = 0x3F // bits 0-5: language code length
)

// TextRecord is the decoded view of a well-known text record payload.
type TextRecord struct {
	UTF16    bool
	Language string
	Text     string
}

// utf16Text decodes big-endian UTF-16 unless a byte order mark says otherwise.
var utf16Text = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// DecodeTextRecord decodes a text record payload. It returns ErrNoText when
// the text would start at or past the end of the payload and
// ErrInvalidEncoding when the text bytes are not valid for the declared charset.
// The text is returned as stored, untrimmed.
func DecodeTextRecord(payload []byte) (TextRecord, error) {
	const op = "DecodeTextRecord"

	if len(payload) == 0 {
		return TextRecord{}, WrapError(ErrCodeNoText, op, "payload is empty", nil)
	}

	status := payload[0]
	langLength := int(status & textStatusLangMask)
	textStart := 1 + langLength
	if textStart >= len(payload) {
		return TextRecord{}, Errorf(ErrCodeNoText, op, "text start %d is not before payload end %d", textStart, len(payload))
	}

	record := TextRecord{
		UTF16:    status&textStatusUTF16 != 0,
		Language: string(payload[1:textStart]),
	}
	textBytes := payload[textStart:]

	if record.UTF16 {
		if len(textBytes)%2 != 0 {
			return TextRecord{}, Errorf(ErrCodeInvalidEncoding, op, "odd UTF-16 text length %d", len(textBytes))
		}
		decoded, err := utf16Text.NewDecoder().Bytes(textBytes)
		if err != nil {
			return TextRecord{}, WrapError(ErrCodeInvalidEncoding, op, "invalid UTF-16 text", err)
		}
		record.Text = string(decoded)
		return record, nil
	}

	if !utf8.Valid(textBytes) {
		return TextRecord{}, WrapError(ErrCodeInvalidEncoding, op, "invalid UTF-8 text", nil)
	}
	record.Text = string(textBytes)
	return record, nil
}
