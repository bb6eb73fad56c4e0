package core

// Blocks holds the three raw text inputs exactly as the user typed them.
type Blocks struct {
	Families string `json:"families"`
	Stays    string `json:"stays"`
	Expenses string `json:"expenses"`
}

// DefaultBlocks returns the sample data shown when nothing was saved yet.
func DefaultBlocks() Blocks {
	return Blocks{
		Families: "Adams:John,Mary,Tom\nOiler:Bob,Sue\nBaker:Ann",
		Stays:    "John,7\nMary,5\nTom,5\nBob,7\nSue,3\nAnn,7",
		Expenses: "Adams,rent,2100,House rental\nOiler,firewood,150,Firewood\nBaker,food,320,Groceries",
	}
}

// Incomplete reports whether any of the three blocks is blank.
func (b Blocks) Incomplete() bool {
	return b.Families == "" || b.Stays == "" || b.Expenses == ""
}
