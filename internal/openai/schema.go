package openai

// JSON Schema construction for structured output. The schemas forbid
// additional properties everywhere so the response is machine-parseable
// without guessing.

// IdeaSchema describes a single content idea object.
func IdeaSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"idea":      map[string]interface{}{"type": "string"},
			"rationale": map[string]interface{}{"type": "string"},
			"pros": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
			"cons": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"idea", "rationale", "pros", "cons"},
	}
}

// IdeaArraySchema bounds the number of ideas generated per channel.
func IdeaArraySchema(minItems, maxItems int) map[string]interface{} {
	return map[string]interface{}{
		"type":     "array",
		"minItems": minItems,
		"maxItems": maxItems,
		"items":    IdeaSchema(),
	}
}

// AnalysisSchema builds the top-level response schema for the given channel
// keys. An empty key list yields a well-formed schema with an empty channels
// object; the caller is responsible for supplying at least one channel.
func AnalysisSchema(channelKeys []string, minItems, maxItems int) map[string]interface{} {
	ideaArray := IdeaArraySchema(minItems, maxItems)

	channelProperties := make(map[string]interface{}, len(channelKeys))
	for _, key := range channelKeys {
		channelProperties[key] = ideaArray
	}

	required := make([]string, len(channelKeys))
	copy(required, channelKeys)

	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"status": map[string]interface{}{
				"type": "string",
				"enum": []string{"SUCCESS", "FAILURE"},
			},
			"summary": map[string]interface{}{"type": "string"},
			"channels": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           channelProperties,
				"required":             required,
			},
		},
		"required": []string{"status", "summary", "channels"},
	}
}

// TextFormat wraps a schema in the responses API structured-output envelope.
func TextFormat(name string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":   "json_schema",
		"name":   name,
		"strict": true,
		"schema": schema,
	}
}
