package openai

// Best-effort extraction of generated text from the responses API envelope.
// The upstream envelope is not assumed stable: generated text has been
// observed under message->content[]->text.value, content[]->text (string)
// and content[]->text.value. All fragments found across every element of the
// output array are concatenated in array order.

// ExtractAssistantText aggregates every text fragment found in the envelope.
// The second return value is false when no fragment was found anywhere.
func ExtractAssistantText(raw map[string]interface{}) (string, bool) {
	output, ok := raw["output"].([]interface{})
	if !ok {
		return "", false
	}

	var aggregated []byte
	for _, item := range output {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		// Older shape: { message: { content: [...] } }
		if message, ok := itemMap["message"].(map[string]interface{}); ok {
			if content, ok := message["content"].([]interface{}); ok {
				aggregated = appendContentText(aggregated, content)
			}
		}

		// Newer shape: content directly on the item: { content: [...] }
		if content, ok := itemMap["content"].([]interface{}); ok {
			aggregated = appendContentText(aggregated, content)
		}
	}

	if len(aggregated) == 0 {
		return "", false
	}
	return string(aggregated), true
}

// appendContentText handles both text variants inside a content array:
// { text: "..." } and { text: { value: "..." } }.
func appendContentText(dst []byte, content []interface{}) []byte {
	for _, c := range content {
		cMap, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		switch text := cMap["text"].(type) {
		case string:
			dst = append(dst, text...)
		case map[string]interface{}:
			if value, ok := text["value"].(string); ok {
				dst = append(dst, value...)
			}
		}
	}
	return dst
}
