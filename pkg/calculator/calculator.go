// Package calculator provides integer division and subtraction over int64
// operands.
//
// Both operations are pure. Overflow follows Go's two's-complement rules:
// subtraction wraps, and math.MinInt64 / -1 yields math.MinInt64.
package calculator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDivisionByZero is returned by PerformIntegerDivision when the divisor is 0.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrUnknownOperation is returned when an operation name cannot be parsed.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Error kinds reported to callers that cannot use errors.Is, such as MCP clients.
const (
	KindDivisionByZero   = "DivisionByZero"
	KindUnknownOperation = "UnknownOperation"
)

// Operation names an arithmetic operation supported by the Calculator.
type Operation string

const (
	OpDivide   Operation = "divide"
	OpSubtract Operation = "subtract"
)

// ParseOperation converts a user supplied name into an Operation
func ParseOperation(name string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "divide", "div", "/":
		return OpDivide, nil
	case "subtract", "sub", "-":
		return OpSubtract, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// Calculator performs integer arithmetic. The zero value is ready to use and
// safe for concurrent use.
type Calculator struct{}

// New returns a Calculator.
func New() *Calculator {
	return &Calculator{}
}

// PerformIntegerDivision returns dividend / divisor truncated toward zero.
func (c *Calculator) PerformIntegerDivision(dividend, divisor int64) (int64, error) {
	if divisor == 0 {
		return 0, ErrDivisionByZero
	}
	return dividend / divisor, nil
}

// PerformIntegerSubtraction returns minuend - subtrahend, wrapping on overflow.
func (c *Calculator) PerformIntegerSubtraction(minuend, subtrahend int64) int64 {
	return minuend - subtrahend
}

// Apply runs op on a and b.
func (c *Calculator) Apply(op Operation, a, b int64) (int64, error) {
	switch op {
	case OpDivide:
		return c.PerformIntegerDivision(a, b)
	case OpSubtract:
		return c.PerformIntegerSubtraction(a, b), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
}

// ErrorKind maps err to one of the Kind constants, or "" when err is nil or
// not a calculator error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDivisionByZero):
		return KindDivisionByZero
	case errors.Is(err, ErrUnknownOperation):
		return KindUnknownOperation
	}
	return ""
}
