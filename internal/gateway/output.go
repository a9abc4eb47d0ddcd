package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// OutputStatus tags the Output variant.
type OutputStatus string

const (
	OutputOK    OutputStatus = "ok"
	OutputError OutputStatus = "error"
)

// MimeEntry is one payload of a successful output.
type MimeEntry struct {
	Type  string
	Value string
}

// MimeBundle holds the payloads of a successful output in the order the
// gateway sent them. Non-string payloads keep their raw JSON text.
type MimeBundle []MimeEntry

// Get returns the payload for a mime type.
func (b MimeBundle) Get(mime string) (string, bool) {
	for _, e := range b {
		if e.Type == mime {
			return e.Value, true
		}
	}
	return "", false
}

// Output is the result of a statement. Status selects which fields are set:
// Data for OutputOK, ErrorName/ErrorValue/Traceback for OutputError.
type Output struct {
	Status         OutputStatus
	ExecutionCount int
	Data           MimeBundle
	ErrorName      string
	ErrorValue     string
	Traceback      []string
}

// UnmarshalJSON decodes an output object. gjson is used so that the key order
// of the data object survives decoding.
func (o *Output) UnmarshalJSON(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return errors.New("output: invalid JSON")
	}
	r := gjson.ParseBytes(raw)
	if !r.IsObject() {
		return fmt.Errorf("output: expected object, got %s", r.Type)
	}

	out := Output{
		Status:         OutputStatus(r.Get("status").String()),
		ExecutionCount: int(r.Get("execution_count").Int()),
	}
	switch out.Status {
	case OutputOK:
		data := r.Get("data")
		if data.Exists() && !data.IsObject() && data.Type != gjson.Null {
			return fmt.Errorf("output: data must be an object, got %s", data.Type)
		}
		data.ForEach(func(key, value gjson.Result) bool {
			out.Data = append(out.Data, MimeEntry{Type: key.String(), Value: value.String()})
			return true
		})
	case OutputError:
		out.ErrorName = r.Get("ename").String()
		out.ErrorValue = r.Get("evalue").String()
		for _, line := range r.Get("traceback").Array() {
			out.Traceback = append(out.Traceback, line.String())
		}
	default:
		return fmt.Errorf("output: unknown status %q", out.Status)
	}

	*o = out
	return nil
}

// MarshalJSON encodes the output in the gateway's wire format, keeping the
// data key order.
func (o Output) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"status":`)
	writeJSON(&buf, string(o.Status))
	buf.WriteString(`,"execution_count":`)
	writeJSON(&buf, o.ExecutionCount)

	switch o.Status {
	case OutputOK:
		buf.WriteString(`,"data":{`)
		for i, e := range o.Data {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSON(&buf, e.Type)
			buf.WriteByte(':')
			writeJSON(&buf, e.Value)
		}
		buf.WriteByte('}')
	case OutputError:
		buf.WriteString(`,"ename":`)
		writeJSON(&buf, o.ErrorName)
		buf.WriteString(`,"evalue":`)
		writeJSON(&buf, o.ErrorValue)
		buf.WriteString(`,"traceback":`)
		tb := o.Traceback
		if tb == nil {
			tb = []string{}
		}
		writeJSON(&buf, tb)
	default:
		return nil, fmt.Errorf("output: unknown status %q", o.Status)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) {
	// Strings, ints and string slices cannot fail to encode.
	b, _ := json.Marshal(v)
	buf.Write(b)
}
