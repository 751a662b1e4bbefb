package types

import (
	"time"

	"github.com/google/uuid"
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CalcContext provides shared context across all calculation responses
type CalcContext struct {
	OperationID  string    `json:"operationId"`         // Unique identifier of this call
	Timestamp    time.Time `json:"timestamp"`           // Operation timestamp
	Operation    string    `json:"operation,omitempty"` // Operation performed
	ErrorKind    string    `json:"errorKind,omitempty"` // Machine readable error kind, e.g. DivisionByZero
	ErrorMessage string    `json:"error,omitempty"`     // Error message if any

	// LLM-friendly additions
	Summary string `json:"summary,omitempty"` // Human-readable description of the call
}

// NewCalcContext returns a context stamped with a fresh operation ID.
func NewCalcContext(operation string) CalcContext {
	return CalcContext{
		OperationID: uuid.NewString(),
		Timestamp:   time.Now(),
		Operation:   operation,
	}
}

// Operation-specific responses

// DivisionResponse is returned by the divide tool. Quotient is nil on error.
type DivisionResponse struct {
	Status   string      `json:"status"`
	Context  CalcContext `json:"context"`
	Dividend int64       `json:"dividend"`
	Divisor  int64       `json:"divisor"`
	Quotient *int64      `json:"quotient,omitempty"`
}

// SubtractionResponse is returned by the subtract tool
type SubtractionResponse struct {
	Status     string      `json:"status"`
	Context    CalcContext `json:"context"`
	Minuend    int64       `json:"minuend"`
	Subtrahend int64       `json:"subtrahend"`
	Difference int64       `json:"difference"`
}

// CalculationResponse is returned by the generic calculate tool
type CalculationResponse struct {
	Status  string      `json:"status"`
	Context CalcContext `json:"context"`
	A       int64       `json:"a"`
	B       int64       `json:"b"`
	Result  *int64      `json:"result,omitempty"`
}
