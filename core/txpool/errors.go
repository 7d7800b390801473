package txpool

// RejectKind classifies why admit() refused a transaction.
type RejectKind uint8

const (
	RejectNone RejectKind = iota
	RejectBadSignature
	RejectFeeBelowFloor
	RejectDuplicateHash
	RejectSenderQuotaExceeded
	RejectNonceGap
	RejectInsufficientBalance
	RejectPoolFull
)

func (k RejectKind) String() string {
	switch k {
	case RejectBadSignature:
		return "BadSignature"
	case RejectFeeBelowFloor:
		return "FeeBelowFloor"
	case RejectDuplicateHash:
		return "DuplicateHash"
	case RejectSenderQuotaExceeded:
		return "SenderQuotaExceeded"
	case RejectNonceGap:
		return "NonceGap"
	case RejectInsufficientBalance:
		return "InsufficientBalance"
	case RejectPoolFull:
		return "PoolFull"
	default:
		return "None"
	}
}

// RejectError reports why Admit refused a transaction.
type RejectError struct {
	Kind RejectKind
}

func (e *RejectError) Error() string { return "txpool: rejected (" + e.Kind.String() + ")" }
