package syntax

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// IntValue parses an integer literal, including 0x/0o/0b prefixes and
// digit separators.
func (c *Constant) IntValue() (*big.Int, bool) {
	if c.Kind != ConstInt {
		return nil, false
	}
	return new(big.Int).SetString(c.Text, 0)
}

// FloatValue parses a float literal, or the imaginary part of a complex
// literal. Literals too large for a float64 become infinite.
func (c *Constant) FloatValue() (float64, bool) {
	text := c.Text
	switch c.Kind {
	case ConstFloat:
	case ConstComplex:
		text = strings.TrimRight(text, "jJ")
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// Truthy reports whether the literal is true in a boolean context.
func (c *Constant) Truthy() bool {
	switch c.Kind {
	case ConstString:
		return c.Text != ""
	case ConstBytes:
		switch strings.TrimLeft(c.Text, "bBrR") {
		case `""`, `''`, `""""""`, `''''''`:
			return false
		}
		return true
	case ConstBool:
		return c.Bool
	case ConstNone:
		return false
	case ConstInt:
		v, ok := c.IntValue()
		return !ok || v.Sign() != 0
	case ConstFloat, ConstComplex:
		f, ok := c.FloatValue()
		return !ok || f != 0
	}
	return true
}

// FormatFloat spells f the way Python's repr does: fixed notation with at
// least one fractional digit for exponents in [-4, 16), scientific
// otherwise.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	fixed := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed
}
