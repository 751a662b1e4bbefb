package mcp

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sunfmin/mcp-go-calculator/pkg/types"
)

func getTextContent(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	if tc, ok := mcp.AsTextContent(result.Content[0]); ok {
		return tc.Text
	}

	return ""
}

func newRequest(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

// assertJSONEqual compares got and want as indented JSON and reports a
// unified diff on mismatch.
func assertJSONEqual(t *testing.T, want, got interface{}) {
	t.Helper()

	wantJSON, err := json.MarshalIndent(want, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal expected value: %v", err)
	}
	gotJSON, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal actual value: %v", err)
	}
	if string(wantJSON) == string(gotJSON) {
		return
	}

	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(wantJSON)),
		B:        difflib.SplitLines(string(gotJSON)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("JSON mismatch:\n%s", diff)
}

// stripVolatile clears fields that change on every call.
func stripVolatile(c *types.CalcContext) {
	c.OperationID = ""
	c.Timestamp = time.Time{}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestPingCommand(t *testing.T) {
	server := NewMCPCalculatorServer("", "test-version")

	result, err := server.Ping(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	text := getTextContent(result)
	if text != "pong - MCP Go Calculator is connected!" {
		t.Errorf("Unexpected ping response: %s", text)
	}
}

func TestDivideCommand(t *testing.T) {
	server := NewMCPCalculatorServer("", "test-version")

	result, err := server.Divide(context.Background(), newRequest(map[string]interface{}{
		"dividend": float64(15),
		"divisor":  float64(3),
	}))
	if err != nil {
		t.Fatalf("Divide failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", getTextContent(result))
	}

	var response types.DivisionResponse
	if err := json.Unmarshal([]byte(getTextContent(result)), &response); err != nil {
		t.Fatalf("Failed to parse divide response: %v", err)
	}
	if response.Context.OperationID == "" {
		t.Error("expected an operation ID")
	}
	if response.Context.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
	stripVolatile(&response.Context)

	assertJSONEqual(t, types.DivisionResponse{
		Status: types.StatusSuccess,
		Context: types.CalcContext{
			Operation: "divide",
			Summary:   "15 / 3 = 5",
		},
		Dividend: 15,
		Divisor:  3,
		Quotient: int64Ptr(5),
	}, response)
}

func TestDivideByZeroCommand(t *testing.T) {
	server := NewMCPCalculatorServer("", "test-version")

	result, err := server.Divide(context.Background(), newRequest(map[string]interface{}{
		"dividend": float64(4),
		"divisor":  float64(0),
	}))
	if err != nil {
		t.Fatalf("Divide returned a Go error instead of an error result: %v", err)
	}
	if !result.IsError {
		t.Fatal("division by zero should produce an error result")
	}

	var response types.DivisionResponse
	if err := json.Unmarshal([]byte(getTextContent(result)), &response); err != nil {
		t.Fatalf("Failed to parse divide response: %v", err)
	}
	stripVolatile(&response.Context)

	assertJSONEqual(t, types.DivisionResponse{
		Status: types.StatusError,
		Context: types.CalcContext{
			Operation:    "divide",
			ErrorKind:    "DivisionByZero",
			ErrorMessage: "division by zero",
			Summary:      "4 / 0 failed: division by zero",
		},
		Dividend: 4,
		Divisor:  0,
	}, response)
}

func TestSubtractCommand(t *testing.T) {
	server := NewMCPCalculatorServer("", "test-version")

	tests := []struct {
		minuend, subtrahend interface{}
		want                int64
	}{
		{float64(5), float64(3), 2},
		{float64(2), float64(3), -1},
		{float64(1), float64(1), 0},
		{"-9223372036854775808", "1", math.MaxInt64},
	}

	for _, tt := range tests {
		result, err := server.Subtract(context.Background(), newRequest(map[string]interface{}{
			"minuend":    tt.minuend,
			"subtrahend": tt.subtrahend,
		}))
		if err != nil {
			t.Fatalf("Subtract failed: %v", err)
		}
		if result.IsError {
			t.Errorf("unexpected error result: %s", getTextContent(result))
			continue
		}

		var response types.SubtractionResponse
		if err := json.Unmarshal([]byte(getTextContent(result)), &response); err != nil {
			t.Fatalf("Failed to parse subtract response: %v", err)
		}
		if response.Difference != tt.want {
			t.Errorf("subtract(%v, %v) = %d; want %d", tt.minuend, tt.subtrahend, response.Difference, tt.want)
		}
		if response.Status != types.StatusSuccess {
			t.Errorf("unexpected status %q", response.Status)
		}
	}
}

func TestCalculateCommand(t *testing.T) {
	server := NewMCPCalculatorServer("", "test-version")
	ctx := context.Background()

	result, err := server.Calculate(ctx, newRequest(map[string]interface{}{
		"operation": "div",
		"a":         float64(-7),
		"b":         float64(2),
	}))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	var response types.CalculationResponse
	if err := json.Unmarshal([]byte(getTextContent(result)), &response); err != nil {
		t.Fatalf("Failed to parse calculate response: %v", err)
	}
	stripVolatile(&response.Context)

	assertJSONEqual(t, types.CalculationResponse{
		Status: types.StatusSuccess,
		Context: types.CalcContext{
			Operation: "divide",
			Summary:   "divide(-7, 2) = -3",
		},
		A:      -7,
		B:      2,
		Result: int64Ptr(-3),
	}, response)

	result, err = server.Calculate(ctx, newRequest(map[string]interface{}{
		"operation": "/",
		"a":         float64(1),
		"b":         float64(0),
	}))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !result.IsError || !strings.Contains(getTextContent(result), `"errorKind":"DivisionByZero"`) {
		t.Errorf("expected DivisionByZero error result, got %s", getTextContent(result))
	}

	result, err = server.Calculate(ctx, newRequest(map[string]interface{}{
		"operation": "multiply",
		"a":         float64(1),
		"b":         float64(2),
	}))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !result.IsError || !strings.Contains(getTextContent(result), "unknown operation") {
		t.Errorf("expected unknown operation error, got %s", getTextContent(result))
	}
}

func TestInvalidArguments(t *testing.T) {
	server := NewMCPCalculatorServer("", "test-version")

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing divisor", map[string]interface{}{"dividend": float64(1)}, `missing required argument "divisor"`},
		{"fractional", map[string]interface{}{"dividend": 1.5, "divisor": float64(1)}, "must be an integer"},
		{"too large float", map[string]interface{}{"dividend": 1e300, "divisor": float64(1)}, "pass it as a string"},
		{"bad string", map[string]interface{}{"dividend": "abc", "divisor": float64(1)}, `argument "dividend"`},
		{"wrong type", map[string]interface{}{"dividend": true, "divisor": float64(1)}, "unsupported type bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.Divide(context.Background(), newRequest(tt.args))
			if err != nil {
				t.Fatalf("Divide returned a Go error: %v", err)
			}
			text := getTextContent(result)
			if !result.IsError || !strings.HasPrefix(text, "Error: ") || !strings.Contains(text, tt.want) {
				t.Errorf("unexpected result %q, want error containing %q", text, tt.want)
			}
		})
	}
}

func TestIntArgument(t *testing.T) {
	tests := []struct {
		raw  interface{}
		want int64
	}{
		{float64(-42), -42},
		{float64(maxExactFloat), maxExactFloat},
		{int(7), 7},
		{int64(math.MinInt64), math.MinInt64},
		{json.Number("9223372036854775807"), math.MaxInt64},
		{" 12 ", 12},
	}

	for _, tt := range tests {
		got, err := intArgument(map[string]interface{}{"x": tt.raw}, "x")
		if err != nil {
			t.Errorf("intArgument(%v) returned error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("intArgument(%v) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestStatusCommand(t *testing.T) {
	server := NewMCPCalculatorServer("Test Calculator", "test-version")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			server.Divide(ctx, newRequest(map[string]interface{}{"dividend": float64(9), "divisor": float64(3)}))
		}()
		go func() {
			defer wg.Done()
			server.Subtract(ctx, newRequest(map[string]interface{}{"minuend": float64(9), "subtrahend": float64(3)}))
		}()
	}
	wg.Wait()
	server.Divide(ctx, newRequest(map[string]interface{}{"dividend": float64(9), "divisor": float64(0)}))

	result, err := server.Status(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	var statusResponse StatusResponse
	if err := json.Unmarshal([]byte(getTextContent(result)), &statusResponse); err != nil {
		t.Fatalf("Failed to parse status response: %v", err)
	}

	assertJSONEqual(t, StatusResponse{
		Server: ServerInfo{Name: "Test Calculator", Version: "test-version"},
		Stats:  Stats{Divisions: 11, Subtractions: 10, Failures: 1},
	}, statusResponse)
}

func TestDefaultServerName(t *testing.T) {
	server := NewMCPCalculatorServer("", "v1")
	if server.name != DefaultServerName {
		t.Errorf("name = %q, want %q", server.name, DefaultServerName)
	}
	if server.Server() == nil || server.Calculator() == nil {
		t.Error("server and calculator should be initialized")
	}
}
