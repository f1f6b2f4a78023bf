package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/greenfelt/cardroom/internal/domain"
)

// NumericToCents converts a pgtype.Numeric (from PostgreSQL numeric(15,0))
// to centavos. Returns an error if the value is NULL, carries fractional
// digits, or overflows int64.
func NumericToCents(n pgtype.Numeric) (domain.Cents, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}

	// pgtype.Numeric stores value as Int * 10^Exp.
	bi := new(big.Int).Set(n.Int)

	if n.Exp > 0 {
		multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		bi.Mul(bi, multiplier)
	} else if n.Exp < 0 {
		// numeric(15,0) columns should never produce this; truncate if
		// they somehow do.
		divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		bi.Div(bi, divisor)
	}

	if !bi.IsInt64() {
		return 0, fmt.Errorf("numeric value %s overflows int64", bi.String())
	}
	return domain.Cents(bi.Int64()), nil
}

// CentsToNumeric converts centavos to pgtype.Numeric for writing to a
// PostgreSQL numeric(15,0) column.
func CentsToNumeric(v domain.Cents) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(int64(v)),
		Exp:              0,
		NaN:              false,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
