// Package ledger implements the calculation cycle: parsing the three raw
// text blocks, validating references, aggregating person-nights and
// payments, deriving balances and settling them with a greedy matching.
//
// Every function here is pure. Malformed input lines are dropped silently;
// only referential problems and an empty stay list are reported as errors.
package ledger

import (
	"strconv"
	"strings"

	"housesplit/internal/core"
)

// ParseFamilies parses "Family:Member1,Member2" lines into a membership map.
// The line is split on the first colon only. A member listed under two
// families ends up in the later one.
func ParseFamilies(text string) core.Membership {
	out := core.Membership{}
	for _, line := range lines(text) {
		family, members, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		family = strings.TrimSpace(family)
		for _, m := range strings.Split(members, ",") {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			out[m] = family
		}
	}
	return out
}

// ParseStays parses "Member,Nights" lines. Fields after the second are
// ignored and lines whose nights are not an integer are dropped. Nights may
// carry a sign and single underscores between digits, as in "1_000".
func ParseStays(text string) []core.StayRecord {
	var out []core.StayRecord
	for _, line := range lines(text) {
		if !strings.Contains(line, ",") {
			continue
		}
		parts := strings.Split(line, ",")
		nights, ok := parseNights(parts[1])
		if !ok {
			continue
		}
		out = append(out, core.StayRecord{
			Member: strings.TrimSpace(parts[0]),
			Nights: nights,
		})
	}
	return out
}

// ParseExpenses parses "Family,Category,Amount[,Description]" lines.
// The description is the fourth comma field only, so a description that
// itself contains commas is truncated at the first one. Amounts are decimal
// only; hexadecimal floats and non-finite values drop the line.
func ParseExpenses(text string) []core.ExpenseRecord {
	var out []core.ExpenseRecord
	for _, line := range lines(text) {
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}
		amount, ok := parseAmount(parts[2])
		if !ok {
			continue
		}
		e := core.ExpenseRecord{
			PaidBy:   strings.TrimSpace(parts[0]),
			Category: strings.TrimSpace(parts[1]),
			Amount:   amount,
		}
		if len(parts) > 3 {
			e.Description = strings.TrimSpace(parts[3])
		}
		out = append(out, e)
	}
	return out
}

// Input is the parsed form of core.Blocks.
type Input struct {
	Membership core.Membership
	Stays      []core.StayRecord
	Expenses   []core.ExpenseRecord
}

// Parse parses all three blocks.
func Parse(b core.Blocks) Input {
	return Input{
		Membership: ParseFamilies(b.Families),
		Stays:      ParseStays(b.Stays),
		Expenses:   ParseExpenses(b.Expenses),
	}
}

func parseNights(field string) (int, bool) {
	digits, ok := stripUnderscores(strings.TrimSpace(field))
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseAmount(field string) (float64, bool) {
	field = strings.TrimSpace(field)
	unsigned := strings.TrimLeft(field, "+-")
	if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
		return 0, false
	}
	field, ok := stripUnderscores(field)
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseFloat(field, 64)
	if err != nil || !core.ValidAmount(amount) {
		return 0, false
	}
	return amount, true
}

// stripUnderscores removes digit separators. An underscore is only allowed
// between two digits.
func stripUnderscores(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return strings.ReplaceAll(s, "_", ""), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// lines returns the trimmed, non-empty lines of text.
func lines(text string) []string {
	raw := strings.Split(strings.TrimSpace(text), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
