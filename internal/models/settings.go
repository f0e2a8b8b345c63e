package models

// ShopSettings is the typed view of the settings key/value rows. It is
// loaded fresh per request that needs it; writes go through the repository.
type ShopSettings struct {
	DefaultInterestRate float64 `json:"default_interest_rate"` // percent per month
	DefaultTermDays     int     `json:"default_term_days"`
	RenewDays           int     `json:"renew_days"`
}

// DefaultShopSettings mirrors the values the original shop ran with.
func DefaultShopSettings() ShopSettings {
	return ShopSettings{
		DefaultInterestRate: 20,
		DefaultTermDays:     90,
		RenewDays:           30,
	}
}
