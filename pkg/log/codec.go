package log

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// A capture file is a plain concatenation of CBOR-encoded Events. Map keys
// are written in canonical order so equal events encode to equal bytes.
var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic("capture encoder: " + err.Error())
	}
	return em
}

func mustDecMode() cbor.DecMode {
	// Unknown keys are skipped so older readers accept newer captures.
	dm, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyQuiet,
		MaxNestedLevels: 16,
	}.DecMode()
	if err != nil {
		panic("capture decoder: " + err.Error())
	}
	return dm
}

// MarshalEvent encodes one event.
func MarshalEvent(event Event) ([]byte, error) {
	return encMode.Marshal(event)
}

// UnmarshalEvent decodes one event.
func UnmarshalEvent(data []byte) (Event, error) {
	var event Event
	err := decMode.Unmarshal(data, &event)
	return event, err
}

func newEncoder(w io.Writer) *cbor.Encoder { return encMode.NewEncoder(w) }
func newDecoder(r io.Reader) *cbor.Decoder { return decMode.NewDecoder(r) }
