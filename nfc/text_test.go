package nfc

import (
	"errors"
	"testing"
)

func TestDecodeTextRecordUTF8(t *testing.T) {
	got, err := DecodeTextRecord(textPayload(0x02, "en", []byte("RC-1A2B3C4D")))
	if err != nil {
		t.Fatalf("DecodeTextRecord: %v", err)
	}
	want := TextRecord{UTF16: false, Language: "en", Text: "RC-1A2B3C4D"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecodeTextRecordLanguageCodes(t *testing.T) {
	tests := []struct {
		lang string
		text string
	}{
		{"en", "Hello"},
		{"fr", "Bonjour"},
		{"en-US", "Howdy"},
		{"ja", "こんにちは"},
		{"", "no language"},
	}

	for _, tt := range tests {
		got, err := DecodeTextRecord(utf8Text(tt.lang, tt.text))
		if err != nil {
			t.Errorf("lang=%q: %v", tt.lang, err)
			continue
		}
		if got.Language != tt.lang || got.Text != tt.text {
			t.Errorf("lang=%q: got %+v", tt.lang, got)
		}
	}
}

func TestDecodeTextRecordUTF16(t *testing.T) {
	tests := []struct {
		name string
		text []byte
		want string
	}{
		{"big endian without BOM", utf16BE("RC-ABCDEF01"), "RC-ABCDEF01"},
		{"big endian BOM", append([]byte{0xFE, 0xFF}, utf16BE("RC-01")...), "RC-01"},
		{"little endian BOM", []byte{0xFF, 0xFE, 'R', 0, 'C', 0, '-', 0, '9', 0}, "RC-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTextRecord(textPayload(0x83, "deu", tt.text))
			if err != nil {
				t.Fatalf("DecodeTextRecord: %v", err)
			}
			if !got.UTF16 {
				t.Error("expected UTF16 flag to be set")
			}
			if got.Language != "deu" {
				t.Errorf("language = %q, want %q", got.Language, "deu")
			}
			if got.Text != tt.want {
				t.Errorf("text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestDecodeTextRecordNoText(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty payload", nil},
		{"status byte only", []byte{0x00}},
		{"language fills payload", []byte{0x02, 'e', 'n'}},
		{"language longer than payload", []byte{0x05, 'e', 'n'}},
		{"max language length", []byte{0x3F, 'x'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTextRecord(tt.payload)
			if !errors.Is(err, ErrNoText) {
				t.Errorf("expected ErrNoText, got %v", err)
			}
		})
	}
}

func TestDecodeTextRecordInvalidEncoding(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"invalid UTF-8", textPayload(0x02, "en", []byte{'R', 'C', 0xC3, 0x28})},
		{"odd UTF-16 length", textPayload(0x82, "en", []byte{0x00, 'R', 0x00})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTextRecord(tt.payload)
			if !errors.Is(err, ErrInvalidEncoding) {
				t.Errorf("expected ErrInvalidEncoding, got %v", err)
			}
		})
	}
}

func TestDecodeTextRecordKeepsWhitespace(t *testing.T) {
	got, err := DecodeTextRecord(utf8Text("en", "  RC-01\n"))
	if err != nil {
		t.Fatalf("DecodeTextRecord: %v", err)
	}
	if got.Text != "  RC-01\n" {
		t.Errorf("text = %q, want untrimmed text", got.Text)
	}
}
