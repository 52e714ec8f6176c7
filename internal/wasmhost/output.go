package wasmhost

// Hit is one WASM-module-reported violation after output interpretation,
// before the evaluator attaches rule metadata to build a findings.Finding.
type Hit struct {
	Message string
	Line    int
	Column  int
	Path    string
}

// InterpretOutput applies the fixed output-shape rules: array-of-{result}
// recurses, an object carrying msg/message+line+column(+path) is one hit,
// an object whose boolean-true keys name hits yields one hit per key, an
// array of strings yields one hit per string at (0,0), and any other shape
// contributes nothing.
func InterpretOutput(v any) []Hit {
	switch val := v.(type) {
	case []any:
		return interpretArray(val)
	case map[string]any:
		return interpretObject(val)
	default:
		return nil
	}
}

func interpretArray(items []any) []Hit {
	if allStrings(items) {
		hits := make([]Hit, 0, len(items))
		for _, it := range items {
			hits = append(hits, Hit{Message: it.(string)})
		}
		return hits
	}

	var hits []Hit
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		result, ok := obj["result"]
		if !ok {
			continue
		}
		hits = append(hits, InterpretOutput(result)...)
	}
	return hits
}

func allStrings(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if _, ok := it.(string); !ok {
			return false
		}
	}
	return true
}

func interpretObject(obj map[string]any) []Hit {
	msg, hasMsg := obj["msg"]
	if !hasMsg {
		msg, hasMsg = obj["message"]
	}
	if hasMsg {
		if s, ok := msg.(string); ok {
			line, _ := obj["line"].(float64)
			column, _ := obj["column"].(float64)
			path, _ := obj["path"].(string)
			return []Hit{{Message: s, Line: int(line), Column: int(column), Path: path}}
		}
	}

	var hits []Hit
	for key, val := range obj {
		if b, ok := val.(bool); ok && b {
			hits = append(hits, Hit{Message: key})
		}
	}
	return hits
}
