package domain

// Suit is one of the four question tracks a team picks per round
type Suit string

const (
	SuitSpades   Suit = "spades"
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
)

// Suits lists every suit in display order.
var Suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

var suitNames = map[Suit]string{
	SuitSpades:   "Logic Puzzles",
	SuitHearts:   "Riddles & Patterns",
	SuitDiamonds: "Coding Challenges",
	SuitClubs:    "Tech Flow",
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	_, ok := suitNames[s]
	return ok
}

// Name returns the display name of the suit.
func (s Suit) Name() string {
	return suitNames[s]
}

// SuitOption is a suit offered to a team during suit selection
type SuitOption struct {
	Suit Suit   `json:"suit"`
	Name string `json:"name"`
	Used bool   `json:"used"`
}
