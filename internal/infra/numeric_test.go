package infra

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
)

func TestNumericToCents_Zero(t *testing.T) {
	n := CentsToNumeric(0)
	v, err := NumericToCents(n)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(0), v)
}

func TestNumericToCents_Positive(t *testing.T) {
	n := CentsToNumeric(100000)
	v, err := NumericToCents(n)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(100000), v)
}

func TestNumericToCents_Negative(t *testing.T) {
	n := CentsToNumeric(-50000)
	v, err := NumericToCents(n)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(-50000), v)
}

func TestNumericToCents_MaxColumnValue(t *testing.T) {
	// numeric(15,0) max is 999_999_999_999_999
	maxVal := domain.Cents(999_999_999_999_999)
	n := CentsToNumeric(maxVal)
	v, err := NumericToCents(n)
	require.NoError(t, err)
	assert.Equal(t, maxVal, v)
}

func TestNumericToCents_NullReturnsError(t *testing.T) {
	n := pgtype.Numeric{Valid: false}
	_, err := NumericToCents(n)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToCents_WithPositiveExponent(t *testing.T) {
	// 500 * 10^2 = 50000
	n := pgtype.Numeric{
		Int:   big.NewInt(500),
		Exp:   2,
		Valid: true,
	}
	v, err := NumericToCents(n)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(50000), v)
}

func TestNumericToCents_WithNegativeExponent(t *testing.T) {
	// 50099 * 10^-2 = 500 (truncated)
	n := pgtype.Numeric{
		Int:   big.NewInt(50099),
		Exp:   -2,
		Valid: true,
	}
	v, err := NumericToCents(n)
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(500), v)
}

func TestNumericToCents_Overflow(t *testing.T) {
	overflow := new(big.Int).SetInt64(math.MaxInt64)
	overflow.Add(overflow, big.NewInt(1))
	n := pgtype.Numeric{
		Int:   overflow,
		Exp:   0,
		Valid: true,
	}
	_, err := NumericToCents(n)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}

func TestCentsToNumeric_Roundtrip(t *testing.T) {
	values := []domain.Cents{0, 1, -1, 100000, -100000, 999_999_999_999_999, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		n := CentsToNumeric(v)
		result, err := NumericToCents(n)
		require.NoError(t, err, "value: %d", v)
		assert.Equal(t, v, result, "value: %d", v)
	}
}
