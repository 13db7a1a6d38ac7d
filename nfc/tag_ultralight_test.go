package nfc

import (
	"bytes"
	"errors"
	"testing"
)

// fakePager serves pages from a memory image starting at the first data page.
type fakePager struct {
	memory []byte
	failAt int // page number that fails, or -1
	err    error
	reads  []byte
}

func newFakePager(memory []byte) *fakePager {
	return &fakePager{memory: memory, failAt: -1}
}

func (f *fakePager) Connect() error    { return nil }
func (f *fakePager) Disconnect() error { return nil }

func (f *fakePager) ReadPage(page byte) ([4]byte, error) {
	f.reads = append(f.reads, page)
	if int(page) == f.failAt {
		return [4]byte{}, f.err
	}
	var out [4]byte
	off := (int(page) - ultralightFirstDataPage) * 4
	if off < len(f.memory) {
		copy(out[:], f.memory[off:])
	}
	return out, nil
}

func newTestUltralight(p *fakePager) *ultralightTag {
	return &ultralightTag{pager: p, id: testTagID, tagType: TagTypeMifareUltralight, maxPages: ultralightPages}
}

func ndefTLV(msg []byte) []byte {
	return append(append([]byte{TLVNDEF, byte(len(msg))}, msg...), TLVTerminator)
}

func TestUltralightReadNDEFStopsWhenTLVComplete(t *testing.T) {
	msg := message(textRecord(utf8Text("en", "RC-01")))
	p := newFakePager(ndefTLV(msg))

	got, err := newTestUltralight(p).ReadNDEF()
	if err != nil {
		t.Fatalf("ReadNDEF: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("ReadNDEF() = %x, want %x", got, msg)
	}
	wantPages := (len(msg) + 2 + 3) / 4
	if len(p.reads) != wantPages {
		t.Errorf("read %d pages, want %d", len(p.reads), wantPages)
	}
	if p.reads[0] != ultralightFirstDataPage {
		t.Errorf("first page read = %d, want %d", p.reads[0], ultralightFirstDataPage)
	}
}

func TestUltralightReadNDEFFirstPageFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"read error", errors.New("crc mismatch"), ErrCodeReadFailed},
		{"tag removed", errors.New("libnfc: Target was removed"), ErrCodeTagRemoved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePager(nil)
			p.failAt = ultralightFirstDataPage
			p.err = tt.err

			got, err := newTestUltralight(p).ReadNDEF()
			if got != nil {
				t.Errorf("ReadNDEF() = %x, want nil", got)
			}
			if GetErrorCode(err) != tt.wantCode {
				t.Errorf("error code = %v, want %v (err %v)", GetErrorCode(err), tt.wantCode, err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error %v does not wrap %v", err, tt.err)
			}
		})
	}
}

func TestUltralightReadNDEFPartialRead(t *testing.T) {
	msg := message(textRecord(utf8Text("en", "RC-0123456789ABCDEF")))

	t.Run("message complete before failure", func(t *testing.T) {
		p := newFakePager(ndefTLV(msg))
		p.failAt = 15
		p.err = errors.New("tag lost")

		got, err := newTestUltralight(p).ReadNDEF()
		if err != nil {
			t.Fatalf("ReadNDEF: %v", err)
		}
		if !bytes.Equal(got, msg) {
			t.Errorf("ReadNDEF() = %x, want %x", got, msg)
		}
	})

	t.Run("failure truncates message", func(t *testing.T) {
		p := newFakePager(ndefTLV(msg))
		p.failAt = ultralightFirstDataPage + 2
		p.err = errors.New("tag lost")

		got, err := newTestUltralight(p).ReadNDEF()
		if err != nil {
			t.Fatalf("ReadNDEF: %v", err)
		}
		if got != nil {
			t.Errorf("ReadNDEF() = %x, want nil for incomplete TLV", got)
		}
		if len(p.reads) != 3 {
			t.Errorf("read %d pages, want 3", len(p.reads))
		}
	})
}

func TestUltralightReadNDEFBlankMemory(t *testing.T) {
	p := newFakePager(nil)

	got, err := newTestUltralight(p).ReadNDEF()
	if err != nil || got != nil {
		t.Errorf("ReadNDEF() = %x, %v; want nil, nil", got, err)
	}
	if len(p.reads) != ultralightPages-ultralightFirstDataPage {
		t.Errorf("read %d pages, want whole data area", len(p.reads))
	}
}
