package formatter

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSON encodes v followed by a newline. HTML characters are left unescaped
// so markdown inside reports stays readable.
func JSON(w io.Writer, v any, pretty bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// MarshalJSON is JSON into a byte slice, for callers that write files.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := JSON(&buf, v, pretty); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSONL writes each value on its own line.
func JSONL[T any](w io.Writer, values []T) error {
	for _, v := range values {
		if err := JSON(w, v, false); err != nil {
			return err
		}
	}
	return nil
}
