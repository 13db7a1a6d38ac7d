package nfc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// TNF is the 3-bit Type Name Format field of an NDEF record header.
type TNF uint8

const (
	TNFEmpty TNF = iota
	TNFWellKnown
	TNFMediaType
	TNFAbsoluteURI
	TNFExternal
	TNFUnknown
	TNFUnchanged
	TNFReserved
)

func (t TNF) String() string {
	switch t {
	case TNFEmpty:
		return "Empty"
	case TNFWellKnown:
		return "WellKnown"
	case TNFMediaType:
		return "MediaType"
	case TNFAbsoluteURI:
		return "AbsoluteURI"
	case TNFExternal:
		return "External"
	case TNFUnknown:
		return "Unknown"
	case TNFUnchanged:
		return "Unchanged"
	default:
		return fmt.Sprintf("Reserved(%d)", uint8(t))
	}
}

// Record header bits
const (
	headerMB  = 0x80 // Message Begin
	headerME  = 0x40 // Message End
	headerCF  = 0x20 // Chunk Flag
	headerSR  = 0x10 // Short Record
	headerIL  = 0x08 // ID Length present
	headerTNF = 0x07
)

// RTDText is the record type of a well-known text record.
var RTDText = []byte{'T'}

// NDEFRecord is a single parsed record of an NDEF message.
type NDEFRecord struct {
	TNF     TNF
	Type    []byte
	ID      []byte
	Payload []byte
	Chunked bool
}

// IsText reports whether the record is a well-known text record (TNF 0x01, type "T").
func (r NDEFRecord) IsText() bool {
	return r.TNF == TNFWellKnown && bytes.Equal(r.Type, RTDText)
}

// NDEFMessage is an ordered list of records.
type NDEFMessage struct {
	Records []NDEFRecord
}

// Len returns the number of records in the message.
func (m *NDEFMessage) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Records)
}

// ParseStatus classifies the outcome of ParseNDEF.
type ParseStatus int

const (
	// ParseNoData means no NDEF bytes were supplied.
	ParseNoData ParseStatus = iota
	// ParseOK means the bytes decoded into a message.
	ParseOK
	// ParseMalformed means the bytes were truncated or otherwise invalid.
	ParseMalformed
)

func (s ParseStatus) String() string {
	switch s {
	case ParseNoData:
		return "no-data"
	case ParseOK:
		return "ok"
	case ParseMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("ParseStatus(%d)", int(s))
	}
}

// ParseResult is the outcome of ParseNDEF. Message is set only for ParseOK and
// Err only for ParseMalformed.
type ParseResult struct {
	Status  ParseStatus
	Message *NDEFMessage
	Err     error
}

// ParseNDEF parses raw NDEF message bytes. A nil or empty buffer yields
// ParseNoData; any truncation yields ParseMalformed and no records at all.
func ParseNDEF(raw []byte) ParseResult {
	if len(raw) == 0 {
		return ParseResult{Status: ParseNoData}
	}

	records, err := parseNDEFRecords(raw)
	if err != nil {
		return ParseResult{Status: ParseMalformed, Err: err}
	}
	return ParseResult{Status: ParseOK, Message: &NDEFMessage{Records: records}}
}

// parseNDEFRecords walks the record list until a record with ME set or the
// end of the buffer.
func parseNDEFRecords(raw []byte) ([]NDEFRecord, error) {
	const op = "ParseNDEF"

	var records []NDEFRecord
	offset := 0

	for offset < len(raw) {
		header := raw[offset]
		me := header&headerME != 0
		sr := header&headerSR != 0
		il := header&headerIL != 0

		pos := offset + 1

		if pos+1 > len(raw) {
			return nil, Errorf(ErrCodeMalformedNDEF, op, "truncated type length at offset %d", pos)
		}
		typeLength := int(raw[pos])
		pos++

		var payloadLength int
		if sr {
			if pos+1 > len(raw) {
				return nil, Errorf(ErrCodeMalformedNDEF, op, "truncated short record payload length at offset %d", pos)
			}
			payloadLength = int(raw[pos])
			pos++
		} else {
			if pos+4 > len(raw) {
				return nil, Errorf(ErrCodeMalformedNDEF, op, "truncated payload length at offset %d", pos)
			}
			n := binary.BigEndian.Uint32(raw[pos : pos+4])
			if uint64(n) > uint64(len(raw)) {
				return nil, Errorf(ErrCodeMalformedNDEF, op, "payload length %d exceeds message size %d", n, len(raw))
			}
			payloadLength = int(n)
			pos += 4
		}

		var idLength int
		if il {
			if pos+1 > len(raw) {
				return nil, Errorf(ErrCodeMalformedNDEF, op, "truncated ID length at offset %d", pos)
			}
			idLength = int(raw[pos])
			pos++
		}

		if typeLength > len(raw)-pos {
			return nil, Errorf(ErrCodeMalformedNDEF, op, "truncated type field at offset %d", pos)
		}
		recordType := bytes.Clone(raw[pos : pos+typeLength])
		pos += typeLength

		var recordID []byte
		if idLength > 0 {
			if idLength > len(raw)-pos {
				return nil, Errorf(ErrCodeMalformedNDEF, op, "truncated ID field at offset %d", pos)
			}
			recordID = bytes.Clone(raw[pos : pos+idLength])
			pos += idLength
		}

		if payloadLength > len(raw)-pos {
			return nil, Errorf(ErrCodeMalformedNDEF, op, "truncated payload at offset %d", pos)
		}
		payload := bytes.Clone(raw[pos : pos+payloadLength])
		pos += payloadLength

		records = append(records, NDEFRecord{
			TNF:     TNF(header & headerTNF),
			Type:    recordType,
			ID:      recordID,
			Payload: payload,
			Chunked: header&headerCF != 0,
		})

		offset = pos
		if me {
			break
		}
	}

	return records, nil
}
