package syncreq

import (
	"bytes"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// payloadSchema checks JSON types only. Required fields and defaults are
// handled by Normalize so a missing repositoryId gets its own message.
const payloadSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "repositoryId":   {"type": ["string", "null"]},
    "repositoryName": {"type": "string"},
    "days":           {"type": "integer", "minimum": 1},
    "priority":       {"enum": ["low", "medium", "high", ""]},
    "reason":         {"type": "string"},
    "jobId":          {"type": "string"},
    "maxItems":       {"type": "integer", "minimum": 0},
    "timeRange":      {"type": ["integer", "string"]},
    "triggerSource":  {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payloadSchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("sync-payload.json", doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("sync-payload.json")
	})
	return schema, schemaErr
}

func checkTypes(payload []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return invalid(err, "malformed trigger payload: %v", err)
	}
	if err := sch.Validate(inst); err != nil {
		return invalid(err, "malformed trigger payload: %v", err)
	}
	return nil
}
