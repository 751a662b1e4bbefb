package mcp

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxExactFloat is the largest magnitude at which every integer is exactly
// representable as a float64.
const maxExactFloat = 1 << 53

// intArgument extracts a signed 64-bit integer argument. JSON numbers decode as
// float64, so values beyond ±2^53 must be passed as strings.
func intArgument(args map[string]interface{}, name string) (int64, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, fmt.Errorf("missing required argument %q", name)
	}

	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Trunc(v) != v {
			return 0, fmt.Errorf("argument %q must be an integer, got %v", name, v)
		}
		if math.Abs(v) > maxExactFloat {
			return 0, fmt.Errorf("argument %q is too large to be passed as a number, pass it as a string", name)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", name, err)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q: %w", name, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("argument %q has unsupported type %T", name, raw)
}
