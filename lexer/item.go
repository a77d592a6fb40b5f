// SPDX-License-Identifier: MIT
package lexer

type (
	// ItemID int holding an identifier for the Item tokens
	ItemID int

	// Item type holding token, value & item type of scanned runes.
	//
	// Items are immutable once emitted.
	Item struct {
		Val string // The matched text, including absorbed whitespace
		ID  ItemID // The type of this Item
		Pos int    // The starting position, (in runes) of this Item

		// Num holds the value of an ItemNumber.
		Num float64
		// Fractional is set for an ItemNumber with a decimal part.
		Fractional bool

		// Die holds the captured groups of an ItemDie.
		Die DieSpec
	}

	// DieSpec holds the raw groups captured for a die, as written.
	DieSpec struct {
		// Count is the optional dice count digits, empty when absent.
		Count string
		// Sides is the required sides digits, never starting with '0'.
		Sides string

		// Modifier is either "adv" or "dis" (any case), empty otherwise.
		Modifier string

		// Inclusive is 'k' or 'd' (any case) when captured.
		Inclusive rune
		// Range is 'h' or 'l' (any case) when captured.
		Range rune
		// KeepCount is the optional modifier count digits.
		KeepCount string
	}
)

// iota is used to define an incrementing number sequence for const
// declarations
const (
	_             ItemID = iota // Consume 0 to start actual numbering at 1.
	ItemPlainText               // Text left untouched.
	ItemNumber           // `\d+(\.\d+)?`.
	ItemPlus             // '+'.
	ItemMinus            // '-'.
	ItemMultiply         // '*'.
	ItemDivide           // '/'.
	ItemOpen             // One of `{[(`.
	ItemClose            // One of `)]}`.
	ItemDie              // `[count]d<sides>[modifier]`.
	ItemEOF              // End of the input.
)

var itemNames = map[ItemID]string{
	ItemPlainText: "PlainText",
	ItemNumber:    "Number",
	ItemPlus:      "Plus",
	ItemMinus:     "Minus",
	ItemMultiply:  "Multiply",
	ItemDivide:    "Divide",
	ItemOpen:      "Open",
	ItemClose:     "Close",
	ItemDie:       "Die",
	ItemEOF:       "EOF",
}

// String is the fmt.Stringer implementation for ItemID.
func (i ItemID) String() string {
	if name, ok := itemNames[i]; ok {
		return name
	}

	return "Unknown"
}

// IsOperand reports whether the Item carries a numeric value.
func (i Item) IsOperand() bool { return i.ID == ItemNumber || i.ID == ItemDie }
