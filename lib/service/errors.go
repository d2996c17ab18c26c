package service

import (
	"errors"

	"github.com/muhasebehub/muhasebe.go/lib/ledger"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrLifecycle            = ledger.ErrTransition
	ErrInUse                = errors.New("still referenced by live records")
	ErrUnknownEntity        = errors.New("unknown entity kind")
	ErrInvalidAccount       = errors.New("invalid account")
	ErrAccountInactive      = errors.New("account is not active")
	ErrSameAccount          = errors.New("sender and receiver must be different accounts")
	ErrRiskLimitExceeded    = errors.New("customer risk limit exceeded")
	ErrBaseCurrencyMissing  = errors.New("base currency is not configured")
	ErrUnknownCurrency      = errors.New("unknown or inactive currency")
	ErrInvalidChannel       = errors.New("invalid channel")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrSettlementRequired   = errors.New("channel requires a settlement account of the matching kind")
	ErrIncompleteConversion = errors.New("exchange rate and base amount must be given together")
	ErrInvalidInvoiceType   = errors.New("invalid invoice type")
	ErrEmptyInvoice         = errors.New("invoice needs at least one line")
	ErrInvoiceVoid          = errors.New("invoice is void")
	ErrInvalidOptionValue   = errors.New("option value does not belong to the item")
	ErrInvalidGroup         = errors.New("invalid customer group")
	ErrBadAuth              = errors.New("bad auth")
	ErrUserCreationDisabled = errors.New("user creation is disabled")
	ErrMissingField         = errors.New("required field is missing")
)

// IsValidationError reports whether err was caused by bad input rather than
// by the state of the store.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ledger.ErrInvalidQuantity,
		ledger.ErrInvalidPrice,
		ledger.ErrInvalidDiscount,
		ledger.ErrInvalidVATRate,
		ledger.ErrInvalidVATMode,
		ledger.ErrInvalidAmount,
		ledger.ErrDiscountExceedsSubtotal,
		ErrInvalidAccount,
		ErrAccountInactive,
		ErrSameAccount,
		ErrRiskLimitExceeded,
		ErrUnknownCurrency,
		ErrInvalidChannel,
		ErrInvalidDirection,
		ErrSettlementRequired,
		ErrIncompleteConversion,
		ErrInvalidInvoiceType,
		ErrEmptyInvoice,
		ErrInvoiceVoid,
		ErrInvalidOptionValue,
		ErrInvalidGroup,
		ErrUnknownEntity,
		ErrMissingField,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
