package tankers

// Board column identifiers.
const (
	ColumnAvailable  = "available"
	ColumnInDelivery = "in_delivery"
)

// Board is the two-column drag-and-drop view of the fleet.
type Board struct {
	Available  []Tanker `json:"available"`
	InDelivery []Tanker `json:"in_delivery"`
}

// ColumnFor maps a tanker status to its board column. Tankers under
// maintenance ride in the available column so the two columns always
// partition the whole fleet.
func ColumnFor(status string) string {
	if status == StatusInDelivery {
		return ColumnInDelivery
	}
	return ColumnAvailable
}

// Partition splits tankers into the two board columns. Every tanker lands in
// exactly one column.
func Partition(tankers []Tanker) Board {
	board := Board{Available: []Tanker{}, InDelivery: []Tanker{}}
	for _, t := range tankers {
		if ColumnFor(t.Status) == ColumnInDelivery {
			board.InDelivery = append(board.InDelivery, t)
		} else {
			board.Available = append(board.Available, t)
		}
	}
	return board
}

// ValidColumn reports whether the move target names a board column.
func ValidColumn(column string) bool {
	return column == ColumnAvailable || column == ColumnInDelivery
}
