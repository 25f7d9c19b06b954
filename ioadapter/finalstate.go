package ioadapter

import (
	"io"

	json "github.com/segmentio/encoding/json"

	desk "github.com/fxdesk/deskreplay"
)

// WriteFinalState writes the single JSON document produced by
// [desk.State.ToDict] (spec.md §4.J).
func WriteFinalState(w io.Writer, s desk.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.ToDict())
}
