package nfc

import (
	"regexp"
	"strings"
)

var (
	// cardIDPattern accepts "RC-" followed by one or more hex digits, any case.
	cardIDPattern = regexp.MustCompile(`(?i)^rc-[0-9a-f]+$`)
	// strictCardIDPattern accepts only the canonical eight digit form.
	strictCardIDPattern = regexp.MustCompile(`(?i)^rc-[0-9a-f]{8}$`)
)

// Result is the outcome of extracting a card id for one scan.
//
// The card id is only reachable through CardID so a result can never report
// HasNDEF without an id, or the reverse.
type Result struct {
	TagID  string // colon-separated uppercase hex of the hardware id
	Action string // discovery action, passed through unchanged

	cardID  string
	hasCard bool
}

// NewResult builds a Result. An empty cardID means no card id was found.
func NewResult(tagID, cardID, action string) Result {
	return Result{
		TagID:   tagID,
		Action:  action,
		cardID:  cardID,
		hasCard: cardID != "",
	}
}

// CardID returns the matched card id and whether one was found.
func (r Result) CardID() (string, bool) {
	return r.cardID, r.hasCard
}

// HasNDEF reports whether a card id was extracted from the NDEF message.
func (r Result) HasNDEF() bool {
	return r.hasCard
}

// Identifier returns the card id when present and the hardware tag id otherwise.
func (r Result) Identifier() string {
	if r.hasCard {
		return r.cardID
	}
	return r.TagID
}

// Extractor finds card ids in NDEF messages. The zero value is not usable;
// use NewExtractor.
type Extractor struct {
	pattern *regexp.Regexp
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithStrictCardID restricts matches to exactly eight hex digits after "RC-".
func WithStrictCardID() ExtractorOption {
	return func(e *Extractor) {
		e.pattern = strictCardIDPattern
	}
}

// NewExtractor creates an Extractor. By default any non-empty run of hex
// digits after "RC-" is accepted.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{pattern: cardIDPattern}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract decodes rawNDEF (nil when no message is available) and returns the
// result for a scan of tagID triggered by action. It never fails: malformed
// messages and undecodable records simply produce a result without a card id.
func Extract(tagID, rawNDEF []byte, action string) Result {
	return defaultExtractor.Extract(tagID, rawNDEF, action)
}

// Extract is like the package-level Extract but uses the extractor's pattern.
func (e *Extractor) Extract(tagID, rawNDEF []byte, action string) Result {
	return e.ExtractParsed(tagID, ParseNDEF(rawNDEF), action)
}

// ExtractParsed builds a result from an already parsed message, for callers
// that want to inspect the parse outcome themselves.
func (e *Extractor) ExtractParsed(tagID []byte, parsed ParseResult, action string) Result {
	var cardID string
	if parsed.Status == ParseOK {
		cardID, _ = e.FindCardID(parsed.Message)
	}
	return NewResult(FormatTagID(tagID), cardID, action)
}

// FindCardID returns the text of the first text record that matches the card
// id pattern. Records that are not text, have no text, or fail to decode are
// skipped.
func (e *Extractor) FindCardID(msg *NDEFMessage) (string, bool) {
	if msg == nil {
		return "", false
	}
	for _, record := range msg.Records {
		if !record.IsText() {
			continue
		}
		text, err := DecodeTextRecord(record.Payload)
		if err != nil {
			continue
		}
		if id, ok := e.MatchCardID(text.Text); ok {
			return id, true
		}
	}
	return "", false
}

// MatchCardID trims surrounding whitespace and reports whether the rest is a
// card id. The returned id keeps its original case.
func (e *Extractor) MatchCardID(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !e.pattern.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}
