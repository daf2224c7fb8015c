package sig

import "fmt"

// SlotTag reconciles one parameter or result slot between the wasm32
// and wasm64 compilations of the same declaration. A slot that is i32
// under wasm32 and i64 under wasm64 holds a pointer-sized value and is
// tagged 'p'; any other pair must match exactly.
func SlotTag(narrow, wide ValueType) (byte, error) {
	if narrow == I32 && wide == I64 {
		return 'p', nil
	}
	if narrow != wide {
		return 0, fmt.Errorf("unexpected widening %s -> %s (only i32 -> i64 marks a pointer)", narrow, wide)
	}
	tag, ok := narrow.Tag()
	if !ok {
		return 0, fmt.Errorf("unsupported value type %s", narrow)
	}
	return tag, nil
}

// Reconcile derives the canonical signature string for a symbol from
// its wasm32 and wasm64 function types. The two types must agree on
// parameter count and result count; the result count must be 0 or 1.
func Reconcile(narrow, wide FuncType) (string, error) {
	if len(narrow.Results) != len(wide.Results) {
		return "", fmt.Errorf("result count changed between targets: %d vs %d", len(narrow.Results), len(wide.Results))
	}
	if len(narrow.Params) != len(wide.Params) {
		return "", fmt.Errorf("parameter count changed between targets: %d vs %d", len(narrow.Params), len(wide.Params))
	}
	if len(narrow.Results) > 1 {
		return "", fmt.Errorf("multivalue result (%d values) is not supported", len(narrow.Results))
	}

	tags := make([]byte, 0, 1+len(narrow.Params))
	if len(narrow.Results) == 0 {
		tags = append(tags, 'v')
	} else {
		tag, err := SlotTag(narrow.Results[0], wide.Results[0])
		if err != nil {
			return "", fmt.Errorf("result: %w", err)
		}
		tags = append(tags, tag)
	}
	for i := range narrow.Params {
		tag, err := SlotTag(narrow.Params[i], wide.Params[i])
		if err != nil {
			return "", fmt.Errorf("param %d: %w", i, err)
		}
		tags = append(tags, tag)
	}
	return string(tags), nil
}
