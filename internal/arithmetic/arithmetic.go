// Package arithmetic evaluates the four calculator operations.
//
// Each operation is a precompiled govaluate expression over the parameters
// "a" and "b". Evaluate is pure and safe for concurrent use.
package arithmetic

import (
	"errors"
	"fmt"
	"math"

	"bread-calculator/internal/models"

	"github.com/Knetic/govaluate"
)

var (
	ErrDivisionByZero       = errors.New("division by zero is not allowed")
	ErrUnsupportedOperation = errors.New("unsupported calculation type")
	ErrNonFiniteResult      = errors.New("result is out of range")
)

var expressions = map[models.CalculationType]*govaluate.EvaluableExpression{
	models.Add:      mustCompile("a + b"),
	models.Sub:      mustCompile("a - b"),
	models.Multiply: mustCompile("a * b"),
	models.Divide:   mustCompile("a / b"),
}

func mustCompile(expr string) *govaluate.EvaluableExpression {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		panic(fmt.Sprintf("arithmetic: compile %q: %v", expr, err))
	}
	return e
}

// Evaluate applies op to a and b.
func Evaluate(op models.CalculationType, a, b float64) (float64, error) {
	expr, ok := expressions[op]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedOperation, op)
	}
	if op == models.Divide && b == 0 {
		return 0, ErrDivisionByZero
	}

	value, err := expr.Evaluate(map[string]interface{}{"a": a, "b": b})
	if err != nil {
		return 0, fmt.Errorf("evaluate %s: %w", op, err)
	}
	result, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("evaluate %s: unexpected result type %T", op, value)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, ErrNonFiniteResult
	}
	return result, nil
}
