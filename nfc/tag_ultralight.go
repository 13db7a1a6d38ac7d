package nfc

import (
	"fmt"

	"github.com/clausecker/freefare"
	"github.com/rs/zerolog/log"
)

// ultralightPager is the part of freefare.UltralightTag used for reading.
type ultralightPager interface {
	Connect() error
	Disconnect() error
	ReadPage(page byte) ([4]byte, error)
}

// ultralightTag reads NDEF messages from MIFARE Ultralight and Ultralight C
// tags (NFC Forum Type 2).
type ultralightTag struct {
	pager    ultralightPager
	id       []byte
	tagType  string
	maxPages byte
}

var _ Tag = (*ultralightTag)(nil)

func newUltralightTag(tag freefare.UltralightTag, id []byte) *ultralightTag {
	u := &ultralightTag{pager: tag, id: id, maxPages: ultralightPages}
	switch tag.Type() {
	case freefare.Ultralight:
		u.tagType = TagTypeMifareUltralight
	case freefare.UltralightC:
		u.tagType = TagTypeMifareUltralightC
		u.maxPages = ultralightCPages
	default:
		u.tagType = fmt.Sprintf("MIFARE Ultralight (type %d)", tag.Type())
	}
	return u
}

func (u *ultralightTag) ID() []byte {
	return u.id
}

func (u *ultralightTag) Type() string {
	return u.tagType
}

func (u *ultralightTag) Connect() error {
	return u.pager.Connect()
}

func (u *ultralightTag) Disconnect() error {
	return u.pager.Disconnect()
}

// ReadNDEF reads the data area page by page and unwraps the NDEF Message TLV.
// A failure on the first data page is an error; a later failure ends the read
// with whatever memory was collected.
func (u *ultralightTag) ReadNDEF() ([]byte, error) {
	var memory []byte
	for page := byte(ultralightFirstDataPage); page < u.maxPages; page++ {
		pageData, err := u.pager.ReadPage(page)
		if err != nil {
			if len(memory) == 0 {
				if IsTagRemovedError(err) {
					return nil, NewTagRemovedError("ReadNDEF", err)
				}
				return nil, NewReadError("ReadNDEF", FormatTagID(u.id), fmt.Errorf("page %d: %w", page, err))
			}
			log.Debug().Err(err).Uint8("page", page).Msg("stopping ultralight read early")
			break
		}
		memory = append(memory, pageData[:]...)

		// Stop as soon as the TLV block is complete.
		if msg, ok := TLVFindNDEF(memory); ok {
			return msg, nil
		}
	}

	if msg, ok := TLVFindNDEF(memory); ok {
		return msg, nil
	}
	return nil, nil
}
