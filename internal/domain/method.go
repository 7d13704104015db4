package domain

import "strings"

// PaymentMethod is the instrument the customer paid with.
type PaymentMethod string

const (
	MethodCard       PaymentMethod = "card"
	MethodUPI        PaymentMethod = "upi"
	MethodNetbanking PaymentMethod = "netbanking"
	MethodWallet     PaymentMethod = "wallet"
	MethodUnknown    PaymentMethod = "unknown"
)

// MethodFields carries the optional instrument details a callback or
// checkout form may supply. At most one is expected to be populated.
type MethodFields struct {
	CardLast4 string
	UPIHandle string
	BankCode  string
	Wallet    string
}

// ResolveMethod picks the payment method from whichever field is populated.
// Priority: card, upi, netbanking, wallet. Empty input resolves to unknown.
func ResolveMethod(f MethodFields) PaymentMethod {
	switch {
	case f.CardLast4 != "":
		return MethodCard
	case f.UPIHandle != "":
		return MethodUPI
	case f.BankCode != "":
		return MethodNetbanking
	case f.Wallet != "":
		return MethodWallet
	default:
		return MethodUnknown
	}
}

// ParseMethod normalizes a gateway-reported method string.
func ParseMethod(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card", "debit_card", "credit_card":
		return MethodCard
	case "upi":
		return MethodUPI
	case "netbanking":
		return MethodNetbanking
	case "wallet":
		return MethodWallet
	default:
		return MethodUnknown
	}
}

// MoreSpecificThan reports whether m should overwrite other on a stored
// record. A concrete method never regresses to unknown.
func (m PaymentMethod) MoreSpecificThan(other PaymentMethod) bool {
	if m == MethodUnknown || m == "" {
		return false
	}
	return other == MethodUnknown || other == ""
}
