// Package validation wraps JSON Schema validation of AI responses.
package validation

import (
	"github.com/xeipuuv/gojsonschema"
)

// AgainstSchema validates a JSON document against a schema given as nested Go
// maps. It returns one description per violation; a nil, nil return means the
// document conforms.
func AgainstSchema(document string, schema map[string]interface{}) ([]string, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewStringLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return violations, nil
}
