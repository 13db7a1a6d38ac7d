package nfc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/hsanjuan/go-ndef"
)

func TestParseNDEFNoData(t *testing.T) {
	for _, raw := range [][]byte{nil, {}} {
		result := ParseNDEF(raw)
		if result.Status != ParseNoData {
			t.Errorf("ParseNDEF(%v) status = %v, want %v", raw, result.Status, ParseNoData)
		}
		if result.Message != nil || result.Err != nil {
			t.Errorf("ParseNDEF(%v) should carry neither message nor error", raw)
		}
	}
}

func TestParseNDEFSingleTextRecord(t *testing.T) {
	payload := utf8Text("en", "RC-1A2B3C4D")
	result := ParseNDEF(message(textRecord(payload)))

	if result.Status != ParseOK {
		t.Fatalf("status = %v, err = %v", result.Status, result.Err)
	}
	if result.Message.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", result.Message.Len())
	}

	record := result.Message.Records[0]
	if record.TNF != TNFWellKnown {
		t.Errorf("expected TNF WellKnown, got %v", record.TNF)
	}
	if !record.IsText() {
		t.Error("expected record to be a text record")
	}
	if !bytes.Equal(record.Payload, payload) {
		t.Errorf("payload mismatch: got %x, want %x", record.Payload, payload)
	}
}

func TestParseNDEFMultipleRecordsKeepOrder(t *testing.T) {
	raw := message(
		shortRecord(TNFWellKnown, []byte("U"), []byte{0x04, 'e', 'x', '.', 'c', 'o'}),
		shortRecord(TNFMediaType, []byte("text/plain"), []byte("hi")),
		textRecord(utf8Text("en", "RC-01")),
	)

	result := ParseNDEF(raw)
	if result.Status != ParseOK {
		t.Fatalf("status = %v, err = %v", result.Status, result.Err)
	}

	want := []struct {
		tnf TNF
		typ string
	}{
		{TNFWellKnown, "U"},
		{TNFMediaType, "text/plain"},
		{TNFWellKnown, "T"},
	}
	if result.Message.Len() != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), result.Message.Len())
	}
	for i, w := range want {
		rec := result.Message.Records[i]
		if rec.TNF != w.tnf || string(rec.Type) != w.typ {
			t.Errorf("record %d: got (%v, %q), want (%v, %q)", i, rec.TNF, rec.Type, w.tnf, w.typ)
		}
	}
}

func TestParseNDEFLongRecordAndID(t *testing.T) {
	payload := utf8Text("en", "RC-CAFE")

	// Long record: SR clear, 4 byte payload length, with a 2 byte ID.
	rec := []byte{headerMB | headerME | headerIL | byte(TNFWellKnown), 1}
	rec = binary.BigEndian.AppendUint32(rec, uint32(len(payload)))
	rec = append(rec, 2) // ID length
	rec = append(rec, 'T')
	rec = append(rec, 'i', 'd')
	rec = append(rec, payload...)

	result := ParseNDEF(rec)
	if result.Status != ParseOK {
		t.Fatalf("status = %v, err = %v", result.Status, result.Err)
	}
	got := result.Message.Records[0]
	if string(got.ID) != "id" {
		t.Errorf("expected ID %q, got %q", "id", got.ID)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Errorf("payload mismatch: got %x, want %x", got.Payload, payload)
	}
}

func TestParseNDEFStopsAtMessageEnd(t *testing.T) {
	raw := message(textRecord(utf8Text("en", "RC-01")))
	raw = append(raw, 0xFF, 0xFF, 0xFF) // trailing garbage after ME

	result := ParseNDEF(raw)
	if result.Status != ParseOK {
		t.Fatalf("status = %v, err = %v", result.Status, result.Err)
	}
	if result.Message.Len() != 1 {
		t.Errorf("expected 1 record, got %d", result.Message.Len())
	}
}

func TestParseNDEFMalformed(t *testing.T) {
	valid := message(textRecord(utf8Text("en", "RC-1A2B3C4D")))

	tests := []struct {
		name string
		raw  []byte
	}{
		{"header only", []byte{0xD1}},
		{"missing payload length", []byte{0xD1, 0x01}},
		{"missing long payload length", []byte{0xC1, 0x01, 0x00, 0x00}},
		{"missing ID length", []byte{0xD9, 0x01, 0x05}},
		{"truncated type", []byte{0xD1, 0x05, 0x00, 'T'}},
		{"truncated payload", valid[:len(valid)-3]},
		{"huge long payload length", []byte{0xC1, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 'T'}},
		{"truncated ID", []byte{0xD9, 0x01, 0x00, 0x04, 'T', 'x'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseNDEF(tt.raw)
			if result.Status != ParseMalformed {
				t.Fatalf("status = %v, want %v", result.Status, ParseMalformed)
			}
			if result.Message != nil {
				t.Error("malformed result should not carry a message")
			}
			if !IsMalformedNDEFError(result.Err) {
				t.Errorf("expected malformed NDEF error, got %v", result.Err)
			}
		})
	}
}

func TestParseNDEFMalformedSecondRecordDropsWholeMessage(t *testing.T) {
	raw := message(
		textRecord(utf8Text("en", "RC-01")),
		textRecord(utf8Text("en", "RC-02")),
	)
	result := ParseNDEF(raw[:len(raw)-2])
	if result.Status != ParseMalformed {
		t.Fatalf("status = %v, want %v", result.Status, ParseMalformed)
	}
}

// go-ndef is an independent encoder, so agreement here checks the parser
// against real-world framing rather than our own fixtures.
func TestParseNDEFAgainstGoNDEF(t *testing.T) {
	uri := ndef.NewURIRecord("https://example.com/card")
	text := ndef.NewTextRecord("RC-1A2B3C4D", "en")
	uri.SetMB(true)
	uri.SetME(false)
	text.SetMB(false)
	text.SetME(true)

	msg := &ndef.Message{Records: []*ndef.Record{uri, text}}
	raw, err := msg.Marshal()
	if err != nil {
		t.Fatalf("go-ndef marshal: %v", err)
	}

	result := ParseNDEF(raw)
	if result.Status != ParseOK {
		t.Fatalf("status = %v, err = %v", result.Status, result.Err)
	}
	if result.Message.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", result.Message.Len())
	}
	if result.Message.Records[0].IsText() {
		t.Error("first record should be the URI record")
	}
	if !result.Message.Records[1].IsText() {
		t.Fatal("second record should be a text record")
	}

	decoded, err := DecodeTextRecord(result.Message.Records[1].Payload)
	if err != nil {
		t.Fatalf("DecodeTextRecord: %v", err)
	}
	if decoded.Text != "RC-1A2B3C4D" || decoded.Language != "en" {
		t.Errorf("got %+v", decoded)
	}
}

func TestRecordIsText(t *testing.T) {
	tests := []struct {
		name   string
		record NDEFRecord
		want   bool
	}{
		{"well-known T", NDEFRecord{TNF: TNFWellKnown, Type: []byte("T")}, true},
		{"well-known U", NDEFRecord{TNF: TNFWellKnown, Type: []byte("U")}, false},
		{"media type T", NDEFRecord{TNF: TNFMediaType, Type: []byte("T")}, false},
		{"type with T prefix", NDEFRecord{TNF: TNFWellKnown, Type: []byte("Tx")}, false},
		{"empty type", NDEFRecord{TNF: TNFWellKnown}, false},
	}
	for _, tt := range tests {
		if got := tt.record.IsText(); got != tt.want {
			t.Errorf("%s: IsText() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTNFString(t *testing.T) {
	if TNFWellKnown.String() != "WellKnown" {
		t.Errorf("got %q", TNFWellKnown.String())
	}
	if TNFReserved.String() != "Reserved(7)" {
		t.Errorf("got %q", TNFReserved.String())
	}
}
