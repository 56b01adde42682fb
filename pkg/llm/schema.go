package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// buildPayloadSchema returns the JSON-Schema (draft 2020-12 subset) the model
// reply must satisfy before it is accepted as an extracted payload.
func buildPayloadSchema() map[string]any {
	confidence := map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
	optString := map[string]any{"type": []string{"string", "null"}}
	optNumber := map[string]any{"type": []string{"number", "null"}}
	optInt := map[string]any{"type": []string{"integer", "null"}}

	record := func(required []string, props map[string]any) map[string]any {
		props["confidence"] = confidence
		items := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			items["required"] = required
		}
		return map[string]any{"type": "array", "items": items}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"medications": record([]string{"drug_name"}, map[string]any{
				"drug_name":  map[string]any{"type": "string", "minLength": 1},
				"strength":   optString,
				"directions": optString,
				"indication": optString,
				"start_date": optString,
				"stop_date":  optString,
				"prescriber": optString,
				"pharmacy":   optString,
			}),
			"vaccines": record([]string{"name"}, map[string]any{
				"name":          map[string]any{"type": "string", "minLength": 1},
				"date_given":    optString,
				"clinic":        optString,
				"lot_number":    optString,
				"next_due_date": optString,
			}),
			"allergies": record([]string{"substance_name"}, map[string]any{
				"substance_name": map[string]any{"type": "string", "minLength": 1},
				"allergy_type":   optString,
				"reaction_desc":  optString,
				"severity":       optString,
			}),
			"problems": record([]string{"condition_name"}, map[string]any{
				"condition_name": map[string]any{"type": "string", "minLength": 1},
				"onset_date":     optString,
				"is_active":      map[string]any{"type": []string{"boolean", "null"}},
				"notes":          optString,
			}),
			"vitals": record(nil, map[string]any{
				"recorded_date":    optString,
				"weight_kg":        optNumber,
				"weight_lbs":       optNumber,
				"temperature_f":    optNumber,
				"heart_rate_bpm":   optInt,
				"respiratory_rate": optInt,
				"notes":            optString,
			}),
			"pet_info": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"name":       optString,
					"species":    optString,
					"breed":      optString,
					"weight":     optString,
					"confidence": confidence,
				},
			},
		},
	}
}

// validateAgainstSchema checks data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
