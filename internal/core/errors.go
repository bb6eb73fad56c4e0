package core

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNoStays is returned when expenses have to be allocated but nobody stayed.
	ErrNoStays = errors.New("no stays recorded")
	// ErrNightsOverflow is returned when summed nights do not fit in an int.
	ErrNightsOverflow = errors.New("total nights out of range")
)

// UnknownMemberError lists stay members that are not part of any family.
type UnknownMemberError struct {
	Members []string
}

func NewUnknownMemberError(members []string) *UnknownMemberError {
	return &UnknownMemberError{Members: sortedUnique(members)}
}

func (e *UnknownMemberError) Error() string {
	return "unknown member(s) in stays: " + strings.Join(e.Members, ", ")
}

// UnknownFamilyError lists expense payers that are not declared families.
type UnknownFamilyError struct {
	Families []string
}

func NewUnknownFamilyError(families []string) *UnknownFamilyError {
	return &UnknownFamilyError{Families: sortedUnique(families)}
}

func (e *UnknownFamilyError) Error() string {
	return "unknown family/families in expenses: " + strings.Join(e.Families, ", ")
}

// IsValidation reports whether err is a user-correctable input problem.
func IsValidation(err error) bool {
	var um *UnknownMemberError
	var uf *UnknownFamilyError
	return errors.As(err, &um) || errors.As(err, &uf) ||
		errors.Is(err, ErrNoStays) || errors.Is(err, ErrNightsOverflow)
}

func sortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
