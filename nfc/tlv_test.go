package nfc

import (
	"bytes"
	"testing"
)

func TestTLVFindNDEF(t *testing.T) {
	ndefMsg := message(textRecord(utf8Text("en", "RC-01")))

	long := bytes.Repeat([]byte{0xAB}, 300)

	tests := []struct {
		name   string
		data   []byte
		want   []byte
		wantOK bool
	}{
		{"short NDEF TLV", append(append([]byte{0x03, byte(len(ndefMsg))}, ndefMsg...), 0xFE), ndefMsg, true},
		{"leading null TLVs", append(append([]byte{0x00, 0x00, 0x03, byte(len(ndefMsg))}, ndefMsg...), 0xFE), ndefMsg, true},
		{"lock control before NDEF", append(append([]byte{0x01, 0x03, 0xA0, 0x10, 0x44, 0x03, byte(len(ndefMsg))}, ndefMsg...), 0xFE), ndefMsg, true},
		{"long format", append(append([]byte{0x03, 0xFF, 0x01, 0x2C}, long...), 0xFE), long, true},
		{"empty NDEF TLV", []byte{0x03, 0x00, 0xFE}, []byte{}, true},
		{"terminator first", []byte{0xFE, 0x03, 0x01, 0xD0}, nil, false},
		{"truncated value", []byte{0x03, 0x10, 0xD1, 0x01}, nil, false},
		{"truncated long length", []byte{0x03, 0xFF, 0x01}, nil, false},
		{"empty block", nil, nil, false},
		{"unformatted memory", []byte{0x00, 0x00, 0x00, 0x00}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TLVFindNDEF(tt.data)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %x, want %x", got, tt.want)
			}
		})
	}
}

func TestTLVGetLength(t *testing.T) {
	if got := TLVGetLength([]byte{0x03, 0x12}); got != 0x12 {
		t.Errorf("short length = %d", got)
	}
	if got := TLVGetLength([]byte{0x03, 0xFF, 0x01, 0x2C}); got != 300 {
		t.Errorf("long length = %d", got)
	}
	if got := TLVGetLength([]byte{0x03}); got != 0 {
		t.Errorf("truncated length = %d", got)
	}
}
