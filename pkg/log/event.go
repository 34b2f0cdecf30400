package log

import "time"

// Event represents a captured renderer event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// RendererID is the renderer UDN, e.g. "uuid:...".
	RendererID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// SubscriptionID is the GENA SID the event arrived on, if any.
	SubscriptionID string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Variables   *VariablesEvent   `cbor:"10,keyasint,omitempty"`
	Action      *ActionEvent      `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction is the flow of a captured event relative to this process.
type Direction uint8

const (
	DirectionIn    Direction = iota // received from a renderer
	DirectionOut                    // sent to a renderer
	DirectionLocal                  // local state change
)

var directionNames = [...]string{"IN", "OUT", "LOCAL"}

func (d Direction) String() string { return enumName(directionNames[:], d) }

// Layer is the component that captured the event.
type Layer uint8

const (
	LayerTransport Layer = iota // UPnP adapter: SSDP, GENA, SOAP
	LayerSession                // renderer session
	LayerDisplay                // display controller
)

var layerNames = [...]string{"TRANSPORT", "SESSION", "DISPLAY"}

func (l Layer) String() string { return enumName(layerNames[:], l) }

// Category classifies the payload.
type Category uint8

const (
	CategoryEvent  Category = iota // applied variable batch
	CategoryAction                 // action sent to a renderer
	CategoryState                  // lifecycle change
	CategoryError
)

var categoryNames = [...]string{"EVENT", "ACTION", "STATE", "ERROR"}

func (c Category) String() string { return enumName(categoryNames[:], c) }

// enumName returns names[v], or "UNKNOWN" when v is out of range.
func enumName[T ~uint8](names []string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return "UNKNOWN"
}

// VariablesEvent captures one applied batch of variable updates.
type VariablesEvent struct {
	// Variables holds the applied values, last writer wins.
	Variables map[string]string `cbor:"1,keyasint"`

	// MetadataReset is set when CurrentTrackMetaData failed to decode and
	// the Meta_* variables were cleared.
	MetadataReset bool `cbor:"2,keyasint,omitempty"`
}

// ActionEvent captures an action invocation and its outcome.
type ActionEvent struct {
	// Action is the SOAP action name (Play, GetPositionInfo, ...).
	Action string `cbor:"1,keyasint"`

	// Params are the input arguments.
	Params map[string]string `cbor:"2,keyasint,omitempty"`

	// Result holds the output arguments on success.
	Result map[string]string `cbor:"3,keyasint,omitempty"`

	// Duration is the round-trip time. Stored as nanoseconds.
	Duration time.Duration `cbor:"4,keyasint,omitempty"`

	// Failed is set when the action did not succeed.
	Failed bool `cbor:"5,keyasint,omitempty"`
}

// StateChangeEvent captures attachment, subscription and session lifecycle
// changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity is what changed state.
type StateEntity uint8

const (
	StateEntityAttachment   StateEntity = iota // display attached or detached a renderer
	StateEntitySubscription                    // event subscription
	StateEntitySession                         // renderer session created or closed
)

var stateEntityNames = [...]string{"ATTACHMENT", "SUBSCRIPTION", "SESSION"}

func (s StateEntity) String() string { return enumName(stateEntityNames[:], s) }

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
