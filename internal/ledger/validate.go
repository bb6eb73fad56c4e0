package ledger

import "housesplit/internal/core"

// Validate checks that every stay member belongs to a family and every
// expense payer is a declared family. Members are checked first and the
// first failing check is the only one reported.
func Validate(in Input) error {
	var unknownMembers []string
	for _, s := range in.Stays {
		if !in.Membership.Has(s.Member) {
			unknownMembers = append(unknownMembers, s.Member)
		}
	}
	if len(unknownMembers) > 0 {
		return core.NewUnknownMemberError(unknownMembers)
	}

	families := in.Membership.Families()
	var unknownFamilies []string
	for _, e := range in.Expenses {
		if _, ok := families[e.PaidBy]; !ok {
			unknownFamilies = append(unknownFamilies, e.PaidBy)
		}
	}
	if len(unknownFamilies) > 0 {
		return core.NewUnknownFamilyError(unknownFamilies)
	}
	return nil
}
