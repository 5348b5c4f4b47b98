package domain

// PriceLevel represents one rung of the order book.
// Prices are integer ticks, quantities are integer units.
type PriceLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// BookSnapshot is a read-only view of the visible book at one instant.
// Bids are ordered descending by price, asks ascending; index 0 is best.
// The snapshot is replaced wholesale on each market update, never mutated.
type BookSnapshot struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// BidAt returns the bid level at the given depth.
// ok is false when there is no liquidity at that depth.
func (b *BookSnapshot) BidAt(depth int) (PriceLevel, bool) {
	if depth < 0 || depth >= len(b.Bids) {
		return PriceLevel{}, false
	}
	return b.Bids[depth], true
}

// AskAt returns the ask level at the given depth.
func (b *BookSnapshot) AskAt(depth int) (PriceLevel, bool) {
	if depth < 0 || depth >= len(b.Asks) {
		return PriceLevel{}, false
	}
	return b.Asks[depth], true
}
