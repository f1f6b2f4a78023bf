package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChipType is a chip denomination known to the club.
type ChipType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Value     Cents     `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// ChipInventory maps chip type id -> count, as recorded when a drawer is
// opened or closed.
type ChipInventory map[string]int64

// Value converts the inventory into a money total using each chip type's
// denomination. Counts referencing unknown chip ids are ignored, not an
// error: sessions outlive chip-type edits and a stale reference must not
// block a close.
func (inv ChipInventory) Value(chipTypes []ChipType) Cents {
	byID := make(map[string]Cents, len(chipTypes))
	for _, ct := range chipTypes {
		byID[ct.ID.String()] = ct.Value
	}
	var total Cents
	for id, count := range inv {
		if value, ok := byID[id]; ok {
			total += value * Cents(count)
		}
	}
	return total
}
