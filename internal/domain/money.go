package domain

import (
	"fmt"
	"strings"
)

// Cents is a money amount in integer centavos. All arithmetic in the ledger
// happens on this type; there is no floating point anywhere money flows, so
// there is no silent rounding. Stored as numeric(15,0) in PostgreSQL.
type Cents int64

// String renders the amount in BRL display format: R$ 1.234,56.
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	reais := v / 100
	centavos := v % 100
	return fmt.Sprintf("%sR$ %s,%02d", sign, groupThousands(reais), centavos)
}

func groupThousands(v int64) string {
	digits := fmt.Sprintf("%d", v)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
