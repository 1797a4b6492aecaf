package calc

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// maxIntBits bounds the size of integer powers.
const maxIntBits = 4096

var (
	// ErrDivisionByZero is returned for true or floor division by zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOutOfRange is returned when a result cannot be represented.
	ErrOutOfRange = errors.New("result out of range")

	// ErrComplexResult is returned when a power has no real result.
	ErrComplexResult = errors.New("result is not a real number")
)

// Number is an exact integer or a float64. Arithmetic between integers stays
// integral except for true division, which always produces a float.
type Number struct {
	i       *big.Int
	f       float64
	isFloat bool
}

// Int returns an integer Number.
func Int(v int64) Number {
	return Number{i: big.NewInt(v)}
}

// Float returns a floating point Number.
func Float(v float64) Number {
	return Number{f: v, isFloat: true}
}

func bigInt(v *big.Int) Number {
	return Number{i: v}
}

// IsInteger reports whether n is an exact integer.
func (n Number) IsInteger() bool {
	return !n.isFloat
}

// Float64 returns n as a float64. Integers too large for a float64 yield ±Inf.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	if n.i == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(n.i).Float64()
	return f
}

// String formats integers in full and floats in their shortest round-trip
// form, always with a decimal point or exponent so 5.0 stays distinct from 5.
func (n Number) String() string {
	if !n.isFloat {
		if n.i == nil {
			return "0"
		}
		return n.i.String()
	}
	return formatFloat(n.f)
}

// MarshalJSON encodes n as a JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.isFloat && (math.IsInf(n.f, 0) || math.IsNaN(n.f)) {
		return nil, ErrOutOfRange
	}
	return []byte(n.String()), nil
}

func formatFloat(f float64) string {
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func (n Number) toFloat() (float64, error) {
	f := n.Float64()
	if math.IsInf(f, 0) {
		return 0, ErrOutOfRange
	}
	return f, nil
}

func checkFloat(f float64) (Number, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Number{}, ErrOutOfRange
	}
	return Float(f), nil
}

func floats(a, b Number) (float64, float64, error) {
	x, err := a.toFloat()
	if err != nil {
		return 0, 0, err
	}
	y, err := b.toFloat()
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func neg(a Number) Number {
	if a.isFloat {
		return Float(-a.f)
	}
	return bigInt(new(big.Int).Neg(a.i))
}

func add(a, b Number) (Number, error) {
	if a.IsInteger() && b.IsInteger() {
		return bigInt(new(big.Int).Add(a.i, b.i)), nil
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Number{}, err
	}
	return checkFloat(x + y)
}

func sub(a, b Number) (Number, error) {
	return add(a, neg(b))
}

func mul(a, b Number) (Number, error) {
	if a.IsInteger() && b.IsInteger() {
		return bigInt(new(big.Int).Mul(a.i, b.i)), nil
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Number{}, err
	}
	return checkFloat(x * y)
}

// div is true division. Integer operands are divided exactly and rounded once.
func div(a, b Number) (Number, error) {
	if a.IsInteger() && b.IsInteger() {
		if b.i.Sign() == 0 {
			return Number{}, ErrDivisionByZero
		}
		f, _ := new(big.Rat).SetFrac(a.i, b.i).Float64()
		return checkFloat(f)
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Number{}, err
	}
	if y == 0 {
		return Number{}, ErrDivisionByZero
	}
	return checkFloat(x / y)
}

// floorDiv rounds the quotient toward negative infinity.
func floorDiv(a, b Number) (Number, error) {
	if a.IsInteger() && b.IsInteger() {
		if b.i.Sign() == 0 {
			return Number{}, ErrDivisionByZero
		}
		q, r := new(big.Int).QuoRem(a.i, b.i, new(big.Int))
		if r.Sign() != 0 && r.Sign() != b.i.Sign() {
			q.Sub(q, big.NewInt(1))
		}
		return bigInt(q), nil
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Number{}, err
	}
	if y == 0 {
		return Number{}, ErrDivisionByZero
	}
	return checkFloat(floatFloorDiv(x, y))
}

// floatFloorDiv derives the quotient from the remainder so that
// x == q*y + mod holds with mod taking the sign of y.
func floatFloorDiv(x, y float64) float64 {
	mod := math.Mod(x, y)
	div := (x - mod) / y
	if mod != 0 && (y < 0) != (mod < 0) {
		div--
	}
	if div == 0 {
		return math.Copysign(0, x/y)
	}
	floor := math.Floor(div)
	if div-floor > 0.5 {
		floor++
	}
	return floor
}

func pow(a, b Number) (Number, error) {
	if a.IsInteger() && b.IsInteger() && b.i.Sign() >= 0 {
		return intPow(a.i, b.i)
	}
	x, y, err := floats(a, b)
	if err != nil {
		return Number{}, err
	}
	if x == 0 && y < 0 {
		return Number{}, ErrDivisionByZero
	}
	if x < 0 && y != math.Trunc(y) {
		return Number{}, ErrComplexResult
	}
	return checkFloat(math.Pow(x, y))
}

func intPow(base, exp *big.Int) (Number, error) {
	switch {
	case exp.Sign() == 0:
		return Int(1), nil
	case base.Sign() == 0, base.CmpAbs(big.NewInt(1)) == 0:
		// 0, 1 and -1 never grow
		if base.Sign() < 0 && exp.Bit(0) == 0 {
			return Int(1), nil
		}
		return bigInt(new(big.Int).Set(base)), nil
	}
	if !exp.IsInt64() || exp.Int64() > maxIntBits || int64(base.BitLen()-1)*exp.Int64() > maxIntBits {
		return Number{}, ErrOutOfRange
	}
	return bigInt(new(big.Int).Exp(base, exp, nil)), nil
}
