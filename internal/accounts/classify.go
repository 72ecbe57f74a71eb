package accounts

// Main group codes used by downstream reporting.
const (
	MainGroupDefault   = 1
	MainGroupRevenue   = 2
	MainGroupOperating = 5
)

// DefaultMainGroup maps an account number to its default main group:
// 4000-4999 are revenue, 6000-7999 operating expenses, everything else 1.
func DefaultMainGroup(accountNumber int) int {
	switch {
	case accountNumber >= 4000 && accountNumber <= 4999:
		return MainGroupRevenue
	case accountNumber >= 6000 && accountNumber <= 7999:
		return MainGroupOperating
	default:
		return MainGroupDefault
	}
}

// EffectiveMainGroup returns override when set, otherwise the default for
// accountNumber.
func EffectiveMainGroup(accountNumber int, override *int) int {
	if override != nil {
		return *override
	}
	return DefaultMainGroup(accountNumber)
}
