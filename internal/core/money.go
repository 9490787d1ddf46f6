// Package core provides the expense tracker's domain types and the few
// computations the client performs on fetched data.
//
// This file handles monetary amounts. Amounts are kept in paise to avoid
// floating-point drift; the remote API serializes them as decimal strings
// (sometimes plain numbers), so Money accepts both on unmarshal.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in paise.
type Money struct {
	Paise int64
}

// ParseAmount converts a decimal string to paise with half-up rounding on
// the third decimal place. Grouping commas are stripped first, matching
// the form input which redisplays raw digits with separators.
//
// Examples:
//
//	ParseAmount("12.34")     -> 1234, nil
//	ParseAmount("1,234")     -> 123400, nil
//	ParseAmount("12.345")    -> 1234, nil (rounds down)
//	ParseAmount("12.346")    -> 1235, nil (rounds up)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	paise := iv*100 + frac
	if paise <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Paise: paise}, nil
}

// Rupees returns the rupee value as a float64 for display purposes only.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// Decimal renders the amount as a plain decimal string ("12.34", "12").
func (m Money) Decimal() string {
	neg := m.Paise < 0
	p := m.Paise
	if neg {
		p = -p
	}
	whole := p / 100
	rem := p % 100
	var s string
	if rem == 0 {
		s = strconv.FormatInt(whole, 10)
	} else {
		s = strconv.FormatInt(whole, 10) + "." + twoDigits(rem)
	}
	if neg {
		return "-" + s
	}
	return s
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// MarshalJSON writes the amount as a JSON number, the shape the expense
// creation endpoint expects.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts both decimal strings ("123.45") and numbers
// (123.45). The backend's serializer emits strings for decimal fields.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		m.Paise = 0
		return nil
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		// Zero amounts are valid on the wire even though the form
		// rejects them.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == 0 {
			m.Paise = 0
			return nil
		}
		return err
	}
	if neg {
		parsed.Paise = -parsed.Paise
	}
	m.Paise = parsed.Paise
	return nil
}

// GroupDigits inserts comma separators into a non-negative integer string:
// 1234567 -> "1,234,567".
func GroupDigits(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var b strings.Builder
		lead := len(s) % 3
		if lead > 0 {
			b.WriteString(s[:lead])
		}
		for i := lead; i < len(s); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// FormatRupees renders a rounded, comma-grouped rupee figure for the
// dashboard cards: Money{Paise: 123456700} -> "₹1,234,567".
func FormatRupees(m Money) string {
	whole := m.Paise / 100
	if m.Paise%100 >= 50 {
		whole++
	} else if m.Paise%100 <= -50 {
		whole--
	}
	return "₹" + GroupDigits(whole)
}

// FormatRupeesExact renders the full amount, dropping the paise part when
// it is zero: "₹50" or "₹50.25". Used by trend delta messages.
func FormatRupeesExact(m Money) string {
	neg := m.Paise < 0
	p := m.Paise
	if neg {
		p = -p
	}
	s := "₹" + GroupDigits(p/100)
	if rem := p % 100; rem != 0 {
		s += "." + twoDigits(rem)
	}
	if neg {
		return "-" + s
	}
	return s
}
