package domain

import "fmt"

// ValidatePositiveAmount checks that an amount is strictly positive.
func ValidatePositiveAmount(amount Cents) error {
	if amount <= 0 {
		return ErrValidation(fmt.Sprintf("amount must be positive, got %s", amount))
	}
	return nil
}

// ValidateBuyInMethod checks that a payment method is accepted on buy-ins.
func ValidateBuyInMethod(m PaymentMethod) error {
	if !BuyInMethods[m] {
		return ErrValidation(fmt.Sprintf("payment method %q is not valid for a buy-in", m))
	}
	return nil
}

// ValidatePayoutMethod checks that a payment method is accepted on cash-outs
// and credit payments.
func ValidatePayoutMethod(m PaymentMethod) error {
	if !PayoutMethods[m] {
		return ErrValidation(fmt.Sprintf("payment method %q is not valid for a payout", m))
	}
	return nil
}
