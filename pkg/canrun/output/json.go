package output

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter emits the readiness report as a single indented JSON
// document. Verbose documents additionally carry the probe and
// requirement evidence.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, d *Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	var err error
	if d.Verbose {
		err = encoder.Encode(d)
	} else {
		err = encoder.Encode(d.Report)
	}
	if err != nil {
		logger.Error("json encoding failed", "error", err)
	}
	return err
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
