// Package fixture loads tabular subtraction cases and checks them against a
// Calculator.
//
// A fixture is a CSV file of minuend,subtrahend,expected triples. Blank lines
// and lines starting with '#' are ignored, and the first row may be a header.
package fixture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sunfmin/mcp-go-calculator/pkg/calculator"
	"github.com/sunfmin/mcp-go-calculator/pkg/logger"
)

// ErrMalformedRow is wrapped by every parse error returned from LoadSubtractionCases.
var ErrMalformedRow = errors.New("malformed fixture row")

// SubtractionCase is one row of a subtraction fixture.
type SubtractionCase struct {
	Line       int   `json:"line"`
	Minuend    int64 `json:"minuend"`
	Subtrahend int64 `json:"subtrahend"`
	Expected   int64 `json:"expected"`
}

func (c SubtractionCase) String() string {
	return fmt.Sprintf("%d - %d = %d", c.Minuend, c.Subtrahend, c.Expected)
}

// LoadSubtractionCases parses all rows from r.
func LoadSubtractionCases(r io.Reader) ([]SubtractionCase, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var cases []SubtractionCase
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := reader.FieldPos(0)

		values, err := parseRecord(record)
		if err != nil {
			if first {
				// header row
				logger.Debug("Skipping fixture header", "line", line, "record", record)
				first = false
				continue
			}
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		first = false

		cases = append(cases, SubtractionCase{
			Line:       line,
			Minuend:    values[0],
			Subtrahend: values[1],
			Expected:   values[2],
		})
	}

	logger.Debug("Loaded subtraction fixture", "cases", len(cases))
	return cases, nil
}

func parseRecord(record []string) ([3]int64, error) {
	var values [3]int64
	for i, field := range record {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return values, fmt.Errorf("field %d: %w", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

// Result is the outcome of a single case.
type Result struct {
	Case   SubtractionCase `json:"case"`
	Actual int64           `json:"actual"`
	Passed bool            `json:"passed"`
}

func (r Result) String() string {
	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	return fmt.Sprintf("%s line %d: %d - %d = %d (expected %d)",
		status, r.Case.Line, r.Case.Minuend, r.Case.Subtrahend, r.Actual, r.Case.Expected)
}

// Report summarizes a Verify run.
type Report struct {
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Verify runs every case through calc.
func Verify(calc *calculator.Calculator, cases []SubtractionCase) *Report {
	report := &Report{Results: make([]Result, 0, len(cases))}
	for _, c := range cases {
		actual := calc.PerformIntegerSubtraction(c.Minuend, c.Subtrahend)
		res := Result{Case: c, Actual: actual, Passed: actual == c.Expected}
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
			logger.Debug("Fixture case failed", "line", c.Line, "expected", c.Expected, "actual", actual)
		}
		report.Results = append(report.Results, res)
	}
	return report
}
