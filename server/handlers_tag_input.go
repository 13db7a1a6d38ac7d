package server

import (
	"encoding/json"
	"net/http"

	"github.com/dotside-studios/rccard-agent/nfc"
	"github.com/dotside-studios/rccard-agent/protocol"
)

// handleTagInput handles POST /api/v1/tag and POST /api/v1/decode. Both run
// the injected scan through the handler; only the former publishes it.
func (s *Server) handleTagInput(publish bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if publish && !s.authorized(r) {
			s.sendTagInputError(w, http.StatusUnauthorized, protocol.ErrCodeInvalidRequest, "invalid API secret")
			return
		}

		var req protocol.TagInputRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			s.sendTagInputError(w, http.StatusBadRequest, protocol.ErrCodeInvalidRequest,
				"Failed to parse request body: "+err.Error())
			return
		}

		id, err := nfc.ParseTagID(req.UID)
		if err != nil {
			s.sendTagInputError(w, http.StatusBadRequest, protocol.ErrCodeInvalidUID, err.Error())
			return
		}

		action := req.Action
		if action == "" {
			action = nfc.ActionTagDiscovered
		}
		if !nfc.IsDiscoveryAction(action) {
			s.sendTagInputError(w, http.StatusBadRequest, protocol.ErrCodeInvalidAction,
				"unsupported action: "+action)
			return
		}

		ev := injectedScanEvent(action, id, req)
		tag := ev.Tag.(*HTTPInputTag)
		result, err := s.handler.Handle(ev)
		if err != nil {
			s.sendTagInputError(w, http.StatusInternalServerError, protocol.ErrCodeInternalError, err.Error())
			return
		}

		payload := PayloadFromResult(result)
		message := "Tag decoded"
		if publish {
			s.Publish(result)
			message = "Tag data broadcast to all clients"
		}

		s.logger.Info().
			Str("tag", payload.TagID).
			Str("source", tag.Source()).
			Time("scannedAt", tag.ScannedAt()).
			Bool("published", publish).
			Bool("hasNdef", payload.HasNDEF).
			Msg("tag input received")

		writeJSON(w, http.StatusOK, protocol.TagInputResponse{
			Success: true,
			Message: message,
			Payload: &payload,
		})
	}
}

// injectedScanEvent builds the scan event for an injected request. NDEF
// discoveries deliver the message with the event and the tag itself holds
// none; other actions read the message from the tag.
func injectedScanEvent(action string, id []byte, req protocol.TagInputRequest) nfc.ScanEvent {
	if action == nfc.ActionNDEFDiscovered {
		return nfc.NewScanEvent(action, NewHTTPInputTag(id, nil, req.Source), req.NDEF)
	}
	return nfc.NewScanEvent(action, NewHTTPInputTag(id, req.NDEF, req.Source))
}

// sendTagInputError sends an error response for tag input endpoints.
func (s *Server) sendTagInputError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	writeJSON(w, statusCode, protocol.TagInputResponse{
		Success:   false,
		Error:     message,
		ErrorCode: errorCode,
	})
}
