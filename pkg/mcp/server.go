package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sunfmin/mcp-go-calculator/pkg/calculator"
	"github.com/sunfmin/mcp-go-calculator/pkg/logger"
	"github.com/sunfmin/mcp-go-calculator/pkg/types"
)

// DefaultServerName is reported to MCP clients when no name is configured.
const DefaultServerName = "Go Calculator MCP"

// MCPCalculatorServer encapsulates the MCP server with calculator functionality
type MCPCalculatorServer struct {
	server  *server.MCPServer
	calc    *calculator.Calculator
	name    string
	version string
	stats   stats
}

type stats struct {
	divisions    atomic.Int64
	subtractions atomic.Int64
	failures     atomic.Int64
}

// ServerInfo identifies the running server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Stats counts the calls handled since the server started
type Stats struct {
	Divisions    int64 `json:"divisions"`
	Subtractions int64 `json:"subtractions"`
	Failures     int64 `json:"failures"`
}

// StatusResponse is returned by the status tool
type StatusResponse struct {
	Server ServerInfo `json:"server"`
	Stats  Stats      `json:"stats"`
}

// NewMCPCalculatorServer creates a new MCP server with calculator tools registered
func NewMCPCalculatorServer(name, version string) *MCPCalculatorServer {
	if name == "" {
		name = DefaultServerName
	}
	s := &MCPCalculatorServer{
		server:  server.NewMCPServer(name, version),
		calc:    calculator.New(),
		name:    name,
		version: version,
	}

	// Register all tools
	s.registerTools()

	return s
}

// Server returns the underlying MCP server
func (s *MCPCalculatorServer) Server() *server.MCPServer {
	return s.server
}

// Calculator returns the calculator used by the tool handlers
func (s *MCPCalculatorServer) Calculator() *calculator.Calculator {
	return s.calc
}

// registerTools registers all calculator tools
func (s *MCPCalculatorServer) registerTools() {
	s.addPingTool()
	s.addStatusTool()

	s.addDivideTool()
	s.addSubtractTool()
	s.addCalculateTool()
}

// addPingTool adds a simple ping tool for health checks
func (s *MCPCalculatorServer) addPingTool() {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Simple ping tool to test connection"),
	)

	s.server.AddTool(pingTool, s.Ping)
}

func (s *MCPCalculatorServer) addStatusTool() {
	statusTool := mcp.NewTool("status",
		mcp.WithDescription("Report server identity and the number of calculations served"),
	)

	s.server.AddTool(statusTool, s.Status)
}

// addDivideTool adds the divide tool
func (s *MCPCalculatorServer) addDivideTool() {
	divideTool := mcp.NewTool("divide",
		mcp.WithDescription("Integer division truncated toward zero. Fails with DivisionByZero when the divisor is 0"),
		mcp.WithNumber("dividend",
			mcp.Required(),
			mcp.Description("Signed 64-bit integer to divide"),
		),
		mcp.WithNumber("divisor",
			mcp.Required(),
			mcp.Description("Signed 64-bit integer to divide by"),
		),
	)

	s.server.AddTool(divideTool, s.Divide)
}

// addSubtractTool adds the subtract tool
func (s *MCPCalculatorServer) addSubtractTool() {
	subtractTool := mcp.NewTool("subtract",
		mcp.WithDescription("Integer subtraction with 64-bit two's-complement wraparound"),
		mcp.WithNumber("minuend",
			mcp.Required(),
			mcp.Description("Signed 64-bit integer to subtract from"),
		),
		mcp.WithNumber("subtrahend",
			mcp.Required(),
			mcp.Description("Signed 64-bit integer to subtract"),
		),
	)

	s.server.AddTool(subtractTool, s.Subtract)
}

// addCalculateTool adds the generic calculate tool
func (s *MCPCalculatorServer) addCalculateTool() {
	calculateTool := mcp.NewTool("calculate",
		mcp.WithDescription("Apply an operation (divide or subtract) to two integers"),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Operation name: divide, subtract, div, sub, / or -"),
		),
		mcp.WithNumber("a",
			mcp.Required(),
			mcp.Description("Left operand"),
		),
		mcp.WithNumber("b",
			mcp.Required(),
			mcp.Description("Right operand"),
		),
	)

	s.server.AddTool(calculateTool, s.Calculate)
}

// newErrorResult creates a tool result that represents an error
func newErrorResult(format string, args ...interface{}) *mcp.CallToolResult {
	result := mcp.NewToolResultText(fmt.Sprintf("Error: "+format, args...))
	result.IsError = true
	return result
}

// Ping handles the ping command
func (s *MCPCalculatorServer) Ping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("Received ping request")
	return mcp.NewToolResultText("pong - MCP Go Calculator is connected!"), nil
}

// Status handles the status command
func (s *MCPCalculatorServer) Status(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("Received status request")

	response := StatusResponse{
		Server: ServerInfo{Name: s.name, Version: s.version},
		Stats: Stats{
			Divisions:    s.stats.divisions.Load(),
			Subtractions: s.stats.subtractions.Load(),
			Failures:     s.stats.failures.Load(),
		},
	}

	return newToolResultJSON(response)
}

// Divide handles the divide command
func (s *MCPCalculatorServer) Divide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("Received divide request")

	dividend, err := intArgument(request.Params.Arguments, "dividend")
	if err != nil {
		s.stats.failures.Add(1)
		return newErrorResult("%v", err), nil
	}
	divisor, err := intArgument(request.Params.Arguments, "divisor")
	if err != nil {
		s.stats.failures.Add(1)
		return newErrorResult("%v", err), nil
	}

	s.stats.divisions.Add(1)
	response := types.DivisionResponse{
		Status:   types.StatusSuccess,
		Context:  types.NewCalcContext(string(calculator.OpDivide)),
		Dividend: dividend,
		Divisor:  divisor,
	}

	quotient, err := s.calc.PerformIntegerDivision(dividend, divisor)
	if err != nil {
		s.stats.failures.Add(1)
		logger.Warn("Division failed", "error", err, "dividend", dividend, "divisor", divisor)

		response.Status = types.StatusError
		setError(&response.Context, err)
		response.Context.Summary = fmt.Sprintf("%d / %d failed: %v", dividend, divisor, err)
		return newErrorJSON(response)
	}

	response.Quotient = &quotient
	response.Context.Summary = fmt.Sprintf("%d / %d = %d", dividend, divisor, quotient)
	return newToolResultJSON(response)
}

// Subtract handles the subtract command
func (s *MCPCalculatorServer) Subtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("Received subtract request")

	minuend, err := intArgument(request.Params.Arguments, "minuend")
	if err != nil {
		s.stats.failures.Add(1)
		return newErrorResult("%v", err), nil
	}
	subtrahend, err := intArgument(request.Params.Arguments, "subtrahend")
	if err != nil {
		s.stats.failures.Add(1)
		return newErrorResult("%v", err), nil
	}

	s.stats.subtractions.Add(1)
	difference := s.calc.PerformIntegerSubtraction(minuend, subtrahend)

	response := types.SubtractionResponse{
		Status:     types.StatusSuccess,
		Context:    types.NewCalcContext(string(calculator.OpSubtract)),
		Minuend:    minuend,
		Subtrahend: subtrahend,
		Difference: difference,
	}
	response.Context.Summary = fmt.Sprintf("%d - %d = %d", minuend, subtrahend, difference)

	return newToolResultJSON(response)
}

// Calculate handles the calculate command
func (s *MCPCalculatorServer) Calculate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("Received calculate request")

	name, _ := request.Params.Arguments["operation"].(string)
	op, err := calculator.ParseOperation(name)
	if err != nil {
		s.stats.failures.Add(1)
		return newErrorResult("%v", err), nil
	}
	a, err := intArgument(request.Params.Arguments, "a")
	if err != nil {
		s.stats.failures.Add(1)
		return newErrorResult("%v", err), nil
	}
	b, err := intArgument(request.Params.Arguments, "b")
	if err != nil {
		s.stats.failures.Add(1)
		return newErrorResult("%v", err), nil
	}

	switch op {
	case calculator.OpDivide:
		s.stats.divisions.Add(1)
	case calculator.OpSubtract:
		s.stats.subtractions.Add(1)
	}

	response := types.CalculationResponse{
		Status:  types.StatusSuccess,
		Context: types.NewCalcContext(string(op)),
		A:       a,
		B:       b,
	}

	result, err := s.calc.Apply(op, a, b)
	if err != nil {
		s.stats.failures.Add(1)
		logger.Warn("Calculation failed", "operation", op, "error", err, "a", a, "b", b)

		response.Status = types.StatusError
		setError(&response.Context, err)
		response.Context.Summary = fmt.Sprintf("%s(%d, %d) failed: %v", op, a, b, err)
		return newErrorJSON(response)
	}

	response.Result = &result
	response.Context.Summary = fmt.Sprintf("%s(%d, %d) = %d", op, a, b, result)
	return newToolResultJSON(response)
}

func setError(c *types.CalcContext, err error) {
	c.ErrorKind = calculator.ErrorKind(err)
	c.ErrorMessage = err.Error()
}

func newToolResultJSON(data interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return newErrorResult("failed to serialize data: %v", err), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// newErrorJSON serializes data like newToolResultJSON but flags the result as an error
func newErrorJSON(data interface{}) (*mcp.CallToolResult, error) {
	result, err := newToolResultJSON(data)
	if result != nil {
		result.IsError = true
	}
	return result, err
}
