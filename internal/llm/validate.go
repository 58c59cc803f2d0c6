package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds one compiled schema per Schema.Name. Question, answer key
// and diagram schemas are fixed, so each compiles once per process.
var compiled sync.Map // string -> *jsonschema.Schema

// validateResponse checks a structured reply against schema. A failing
// reply that stopped at the token limit is *ErrMaxTokensExceeded; any other
// failure is *ErrInvalidResponse. A nil schema accepts anything.
func validateResponse(schema *Schema, raw json.RawMessage, stopReason string) error {
	if schema == nil {
		return nil
	}
	err := checkAgainst(schema, raw)
	if err == nil {
		return nil
	}
	if stopReason == stopMaxTokens {
		return &ErrMaxTokensExceeded{Content: raw}
	}
	return &ErrInvalidResponse{Content: raw, Err: err}
}

func checkAgainst(schema *Schema, raw json.RawMessage) error {
	// jsonschema's decoder keeps numbers as json.Number, so integer
	// constraints such as correctAnswerIndex are checked exactly.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("reply is not JSON: %w", err)
	}
	sch, err := compileSchema(schema)
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("reply does not match %s schema: %w", schema.Name, err)
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(schema.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode %s schema: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", schema.Name, err)
	}

	url := "physexam://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load %s schema: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", schema.Name, err)
	}

	v, _ := compiled.LoadOrStore(schema.Name, sch)
	return v.(*jsonschema.Schema), nil
}
