package shared

// Outcome is the result of a bid.
type Outcome string

const (
	Won  Outcome = "won"
	Lost Outcome = "lost"
)

// OutcomeOf maps a won flag onto an Outcome.
func OutcomeOf(won bool) Outcome {
	if won {
		return Won
	}
	return Lost
}

// Valid reports whether o is one of the two known outcomes.
func (o Outcome) Valid() bool {
	return o == Won || o == Lost
}

// Team represents the bidding side of a round: the bidder plus any called teammates.
type Team struct {
	Bidder    string   `json:"bidder"`
	Teammates []string `json:"teammates"`
}

// NewTeam creates a team, copying the teammate slice so the caller may reuse it.
func NewTeam(bidder string, teammates ...string) Team {
	mates := make([]string, len(teammates))
	copy(mates, teammates)
	return Team{Bidder: bidder, Teammates: mates}
}

// Members returns the bidder followed by the teammates.
func (t Team) Members() []string {
	return append([]string{t.Bidder}, t.Teammates...)
}

// Has reports whether name plays on this team.
func (t Team) Has(name string) bool {
	if t.Bidder == name {
		return true
	}
	return IndexOf(t.Teammates, name) != -1
}
