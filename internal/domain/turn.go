// Package domain defines the core types shared across the skill backend:
// the turn envelope consumed from the host, slot values, and resolved
// domain values.
package domain

// Request types delivered by the host platform.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// Intent names surfaced to the host. The NLU interaction model owns these
// strings; they are matched verbatim.
const (
	IntentOneshotMenu       = "OneshotMenuIntent"
	IntentOneshotCompliment = "OneshotComplimentIntent"
	IntentSetRestriction    = "OneshotRestrictionIntent"
	IntentRemoveRestriction = "OneshotRemoveRestrictionIntent"
	IntentDialogMenu        = "DialogMenuIntent"
	IntentSupportedMenus    = "SupportedMenusIntent"
	IntentHelp              = "AMAZON.HelpIntent"
	IntentRepeat            = "AMAZON.RepeatIntent"
	IntentStop              = "AMAZON.StopIntent"
	IntentCancel            = "AMAZON.CancelIntent"
)

// Slot names used by the interaction model.
const (
	SlotCafe        = "Cafe"
	SlotMenu        = "Menu"
	SlotDate        = "Date"
	SlotMeal        = "Meal"
	SlotRestriction = "Restriction"
	SlotCompliment  = "Compliment"
)

// Slot is a named, optionally-filled value extracted upstream of this
// backend. A slot can be absent from the map entirely, present with an
// empty value, or present with a value — callers must distinguish all
// three.
type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Slots is the slot map attached to an intent.
type Slots map[string]Slot

// Value returns the raw value of a named slot and whether it carried one.
// A slot that is absent or present-but-empty reports ok=false.
func (s Slots) Value(name string) (string, bool) {
	slot, present := s[name]
	if !present || slot.Value == "" {
		return "", false
	}
	return slot.Value, true
}

// Intent is the structured interpretation of a user utterance.
type Intent struct {
	Name  string `json:"name"`
	Slots Slots  `json:"slots,omitempty"`
}

// SessionInfo identifies the conversation a turn belongs to.
type SessionInfo struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	New       bool   `json:"new,omitempty"`
}

// TurnRequest is one inbound request/response exchange from the host.
type TurnRequest struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId,omitempty"`
	// ApplicationID identifies the skill registration on the host
	// platform; the gateway rejects mismatches when one is configured.
	ApplicationID string      `json:"applicationId,omitempty"`
	Intent        *Intent     `json:"intent,omitempty"`
	Session       SessionInfo `json:"session"`
}

// Card is the optional visual companion to a spoken response.
type Card struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// TurnResponse is the outbound side of a turn.
type TurnResponse struct {
	SpeechText       string `json:"speechText"`
	RepromptText     string `json:"repromptText,omitempty"`
	ShouldEndSession bool   `json:"shouldEndSession"`
	Card             *Card  `json:"card,omitempty"`
}
