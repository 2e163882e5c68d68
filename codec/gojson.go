package codec

import gojson "github.com/goccy/go-json"

// GoJSON encodes headers as JSON with github.com/goccy/go-json. Snapshots
// written by JSON or GoJSON can be read by either.
type GoJSON struct{}

var _ Codec = GoJSON{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }
