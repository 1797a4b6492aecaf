// Package calc evaluates plain arithmetic expressions without executing code.
//
// Input is first checked against a fixed character whitelist and then parsed
// by a small recursive-descent parser supporting + - * / // ** and
// parentheses. Every outcome, including malformed input and division by
// zero, is reported as a Result value.
package calc

import (
	"encoding/json"
	"strings"
)

// AllowedChars is the whitelist every expression character must belong to.
const AllowedChars = "0123456789+-*/.() "

// ReasonInvalidCharacters is the failure reason for input outside AllowedChars.
const ReasonInvalidCharacters = "Expression contains invalid characters"

// Result is the outcome of evaluating one expression.
// Value is meaningful only when OK is true, Reason only when it is false.
type Result struct {
	OK         bool
	Expression string
	Value      Number
	Reason     string
}

// Success builds a successful Result.
func Success(expr string, v Number) Result {
	return Result{OK: true, Expression: expr, Value: v}
}

// Failure builds a failed Result.
func Failure(expr, reason string) Result {
	return Result{Expression: expr, Reason: reason}
}

// Evaluate validates and evaluates expr. It never panics.
func Evaluate(expr string) Result {
	if !Allowed(expr) {
		return Failure(expr, ReasonInvalidCharacters)
	}

	tree, err := parse(expr)
	if err != nil {
		return Failure(expr, "Calculation error: "+err.Error())
	}
	v, err := tree.eval()
	if err != nil {
		return Failure(expr, "Calculation error: "+err.Error())
	}
	return Success(expr, v)
}

// Allowed reports whether every character of expr is in AllowedChars.
func Allowed(expr string) bool {
	for _, r := range expr {
		if !strings.ContainsRune(AllowedChars, r) {
			return false
		}
	}
	return true
}

type resultJSON struct {
	Success    bool    `json:"success"`
	Expression string  `json:"expression"`
	Result     *Number `json:"result,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// MarshalJSON encodes r as {"success", "expression", "result"} on success and
// {"success", "expression", "error"} on failure.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Success: r.OK, Expression: r.Expression}
	if r.OK {
		v := r.Value
		out.Result = &v
	} else {
		out.Error = r.Reason
	}
	return json.Marshal(out)
}
