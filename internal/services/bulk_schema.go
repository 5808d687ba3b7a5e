package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/yungbote/parammap-backend/internal/domain"
)

const bulkItemSchemaURL = "https://parammap.schemas.local/mapping/bulk-item.schema.json"

const bulkItemSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["vendor_id"],
  "properties": {
    "vendor_id": {"type": "string"},
    "namespace": {"type": ["string", "null"]},
    "rules": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["input_param", "output_param"],
        "properties": {
          "input_param": {"type": "string", "minLength": 1},
          "output_param": {"type": "string", "minLength": 1},
          "transform": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var (
	bulkSchemaOnce sync.Once
	bulkSchema     *jsonschema.Schema
	bulkSchemaErr  error
)

func compiledBulkSchema() (*jsonschema.Schema, error) {
	bulkSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(bulkItemSchemaURL, strings.NewReader(bulkItemSchema)); err != nil {
			bulkSchemaErr = fmt.Errorf("bulk schema load failed: %w", err)
			return
		}
		bulkSchema, bulkSchemaErr = c.Compile(bulkItemSchemaURL)
	})
	return bulkSchema, bulkSchemaErr
}

// BulkItem is one decoded bulk upsert entry. A non-empty Problem marks the
// item malformed; it is reported and never written.
type BulkItem struct {
	VendorID  string        `json:"vendor_id"`
	Namespace *string       `json:"namespace"`
	Rules     []domain.Rule `json:"rules"`
	Problem   string        `json:"-"`
}

// DecodeBulkItems validates each raw item against the bulk item schema and
// decodes the ones that pass.
func DecodeBulkItems(raw []json.RawMessage) []BulkItem {
	out := make([]BulkItem, len(raw))
	schema, err := compiledBulkSchema()
	for i, msg := range raw {
		if err != nil {
			out[i].Problem = err.Error()
			continue
		}
		out[i] = decodeBulkItem(schema, msg)
	}
	return out
}

func decodeBulkItem(schema *jsonschema.Schema, msg json.RawMessage) BulkItem {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return BulkItem{Problem: "invalid JSON: " + err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return BulkItem{Problem: schemaProblem(err)}
	}
	var item BulkItem
	if err := json.Unmarshal(msg, &item); err != nil {
		return BulkItem{Problem: "invalid item: " + err.Error()}
	}
	return item
}

func schemaProblem(err error) string {
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		leaf := ve
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		loc := leaf.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return fmt.Sprintf("%s: %s", loc, leaf.Message)
	}
	return err.Error()
}
