package core

type (
	// Member identifies a person; only meaningful as a key into a Membership.
	Member = string

	// FamilyName identifies a group of members sharing one balance.
	FamilyName = string

	// Membership maps every member to the family it belongs to.
	Membership map[Member]FamilyName

	StayRecord struct {
		Member Member
		Nights int
	}

	ExpenseRecord struct {
		PaidBy      FamilyName
		Category    string
		Amount      float64 // negative amounts are refunds
		Description string  // optional
	}

	// Transfer is a single payment that settles part of From's debt to To.
	Transfer struct {
		From   FamilyName
		To     FamilyName
		Amount float64
	}
)

// Families returns the set of declared family names.
func (m Membership) Families() map[FamilyName]struct{} {
	out := make(map[FamilyName]struct{}, len(m))
	for _, f := range m {
		out[f] = struct{}{}
	}
	return out
}

// Has reports whether member belongs to any family.
func (m Membership) Has(member Member) bool {
	_, ok := m[member]
	return ok
}
