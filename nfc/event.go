package nfc

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Discovery actions that trigger a scan. The values match the Android intent
// actions so payloads stay compatible with mobile consumers.
const (
	ActionTagDiscovered  = "android.nfc.action.TAG_DISCOVERED"
	ActionNDEFDiscovered = "android.nfc.action.NDEF_DISCOVERED"
	ActionTechDiscovered = "android.nfc.action.TECH_DISCOVERED"
)

// IsDiscoveryAction reports whether action is one of the handled discovery actions.
func IsDiscoveryAction(action string) bool {
	switch action {
	case ActionTagDiscovered, ActionNDEFDiscovered, ActionTechDiscovered:
		return true
	}
	return false
}

// ScanEvent is a single tag discovery delivered to a Handler.
type ScanEvent struct {
	ID     string
	Action string
	Tag    Tag
	// Messages holds NDEF messages delivered together with the event. Only
	// the first one is used, and only for ActionNDEFDiscovered.
	Messages [][]byte
}

// NewScanEvent creates a ScanEvent with a fresh id.
func NewScanEvent(action string, tag Tag, messages ...[]byte) ScanEvent {
	return ScanEvent{
		ID:       uuid.NewString(),
		Action:   action,
		Tag:      tag,
		Messages: messages,
	}
}

// Handler turns scan events into results: it acquires the NDEF bytes for the
// event and runs them through an Extractor.
type Handler struct {
	extractor *Extractor
	logger    zerolog.Logger
}

// NewHandler creates a Handler. A nil extractor uses the default pattern.
func NewHandler(extractor *Extractor, logger zerolog.Logger) *Handler {
	if extractor == nil {
		extractor = defaultExtractor
	}
	return &Handler{
		extractor: extractor,
		logger:    logger.With().Str("component", "scan").Logger(),
	}
}

// Handle processes one scan event. It returns ErrUnsupportedAction or ErrNoTag
// for events that should be ignored; every accepted event yields a Result even
// when the tag cannot be read or its message is malformed.
func (h *Handler) Handle(ev ScanEvent) (Result, error) {
	if !IsDiscoveryAction(ev.Action) {
		return Result{}, &NFCError{Code: ErrCodeUnsupportedAction, Op: "Handle", Message: "unsupported discovery action " + ev.Action}
	}
	if ev.Tag == nil {
		return Result{}, ErrNoTag
	}

	tagID := ev.Tag.ID()
	logger := h.logger.With().
		Str("event", ev.ID).
		Str("action", ev.Action).
		Str("tag", FormatTagID(tagID)).
		Logger()

	parsed := ParseNDEF(h.acquire(ev, logger))
	switch parsed.Status {
	case ParseMalformed:
		logger.Warn().Err(parsed.Err).Msg("ignoring malformed NDEF message")
	case ParseOK:
		logger.Debug().Int("records", parsed.Message.Len()).Msg("parsed NDEF message")
	}

	result := h.extractor.ExtractParsed(tagID, parsed, ev.Action)
	if cardID, ok := result.CardID(); ok {
		logger.Info().Str("card", cardID).Msg("card id extracted")
	} else {
		logger.Info().Msg("no card id, falling back to tag id")
	}
	return result, nil
}

// acquire returns the NDEF bytes for an event: the first delivered message
// for NDEF discoveries, otherwise a live read from the tag. Read failures are
// logged and reported as no data.
func (h *Handler) acquire(ev ScanEvent, logger zerolog.Logger) []byte {
	if ev.Action == ActionNDEFDiscovered && len(ev.Messages) > 0 && ev.Messages[0] != nil {
		return ev.Messages[0]
	}

	raw, err := ReadNDEFFromTag(ev.Tag)
	if err != nil {
		switch {
		case IsNotSupportedError(err):
			logger.Debug().Str("type", ev.Tag.Type()).Msg("tag does not support NDEF")
		case IsTagRemovedError(err):
			logger.Debug().Err(err).Msg("tag removed before NDEF read finished")
		default:
			logger.Warn().Err(err).Msg("reading NDEF from tag failed")
		}
		return nil
	}
	return raw
}
