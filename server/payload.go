package server

import (
	"github.com/dotside-studios/rccard-agent/nfc"
	"github.com/dotside-studios/rccard-agent/protocol"
)

// PayloadFromResult converts a scan result to its boundary representation.
// A missing card id becomes the empty string.
func PayloadFromResult(r nfc.Result) protocol.IntentPayload {
	cardID, _ := r.CardID()
	return protocol.IntentPayload{
		TagID:   r.TagID,
		CardID:  cardID,
		Action:  r.Action,
		HasNDEF: r.HasNDEF(),
	}
}
