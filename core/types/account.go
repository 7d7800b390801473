package types

import "github.com/holiman/uint256"

// Account is the per-address ledger entry the store maps Address -> Account
// to. It is created implicitly on first credit; unknown addresses read back
// as the zero value.
//
// Balance uses *uint256.Int (256-bit) rather than a hand-rolled 128-bit
// integer: it is the numeric type the whole dependency stack (uint256,
// pebble value encoding, reward/fee settlement) already standardizes on,
// and it safely represents every value in the required u128 range.
type Account struct {
	Nonce   uint64
	Balance *uint256.Int
}

// NewAccount returns the implicit zero-value account.
func NewAccount() Account {
	return Account{Nonce: 0, Balance: uint256.NewInt(0)}
}

// Clone returns a deep copy, safe to mutate independently of the original.
func (a Account) Clone() Account {
	bal := uint256.NewInt(0)
	if a.Balance != nil {
		bal.Set(a.Balance)
	}
	return Account{Nonce: a.Nonce, Balance: bal}
}
