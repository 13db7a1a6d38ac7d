// Package protocol provides the wire types exchanged with consumers of scan
// results. This package is designed to be importable without pulling in
// server or libnfc dependencies.
package protocol

// MethodOnNfcIntent is the method name carried by every scan notification.
const MethodOnNfcIntent = "onNfcIntent"

// IntentPayload is the boundary representation of a scan result. CardID is
// the empty string when the tag carried no card id; it is never omitted.
type IntentPayload struct {
	TagID   string `json:"tagId" cbor:"tagId"`
	CardID  string `json:"cardId" cbor:"cardId"`
	Action  string `json:"action" cbor:"action"`
	HasNDEF bool   `json:"hasNdef" cbor:"hasNdef"`
}

// MethodCall is the envelope pushed to WebSocket clients.
type MethodCall struct {
	Method    string        `json:"method" cbor:"method"`
	Arguments IntentPayload `json:"arguments" cbor:"arguments"`
}

// NewIntentCall wraps a payload in an onNfcIntent method call.
func NewIntentCall(p IntentPayload) MethodCall {
	return MethodCall{Method: MethodOnNfcIntent, Arguments: p}
}

// TagInputRequest is the request structure for the POST /api/v1/tag and
// POST /api/v1/decode endpoints.
type TagInputRequest struct {
	// UID is the tag's hardware identifier in hex format.
	// Supports formats: "04:A3:2B:9C", "04A32B9C", "04 A3 2B 9C", "04-A3-2B-9C"
	UID string `json:"uid"`

	// NDEF is the raw NDEF message, base64 encoded in JSON. Optional.
	NDEF []byte `json:"ndef,omitempty"`

	// Action is the discovery action. Optional - defaults to TAG_DISCOVERED.
	Action string `json:"action,omitempty"`

	// Source identifies where this tag data came from (e.g., "http-api", "manual-tool")
	// Optional - defaults to "http-api"
	Source string `json:"source,omitempty"`
}

// TagInputResponse is the response structure for the tag input endpoints.
type TagInputResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorCode string         `json:"errorCode,omitempty"`
	Payload   *IntentPayload `json:"payload,omitempty"`
}

// Error codes for TagInputResponse
const (
	ErrCodeInvalidUID     = "INVALID_UID"
	ErrCodeInvalidAction  = "INVALID_ACTION"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
