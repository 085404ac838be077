package encoding

import (
	"github.com/cockroachdb/errors"
	jsonenc "github.com/globalguide/travelagent/encoding/json"
)

type SchemaEncoder interface {
	Marshal(req any) ([]byte, error)
	Unmarshal([]byte, any) error
	// GetFormatInstructions returns the wrapped message with message schema for the prompt
	GetFormatInstructions() string
}

type Validator interface {
	Validate(any) error
}

type Mode = string

const (
	ModeJSON       Mode = "json"
	ModeJSONSchema Mode = "json_schema"
	ModePlainText  Mode = "plain_text"
)

// ModeDefault is the default mode for the encoder.
// The travel planner replies in markdown, not structured JSON.
var ModeDefault = ModePlainText

func PredefinedSchemaEncoder(mode Mode, req any) (SchemaEncoder, error) {
	switch mode {
	case ModeJSON, ModeJSONSchema:
		return jsonenc.NewEncoder(req)
	default:
		return nil, errors.Newf("no predefined encoder: %s", mode)
	}
}

var (
	_ SchemaEncoder = (*jsonenc.Encoder)(nil)
)
