package domain

import "time"

type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

var SupportedCurrencies = []Currency{CurrencyEUR, CurrencyUSD, CurrencyGBP}

func (c Currency) Valid() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// Activity is a bookable tour. Capacity is the maximum number of
// participants per calendar day, pooled across all bookings for that day.
type Activity struct {
	ID            int64
	Name          string
	Slug          string
	Capacity      int
	Prices        map[Currency]int64 // per-person price in minor units
	DurationHours int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriceFor returns the per-person price in minor units for the given currency.
func (a *Activity) PriceFor(c Currency) (int64, bool) {
	price, ok := a.Prices[c]
	return price, ok
}
