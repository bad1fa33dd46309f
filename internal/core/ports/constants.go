package ports

import "time"

const (
	// OrderTTL is how long an issued withdrawal order stays redeemable.
	OrderTTL = 30 * time.Minute

	// HistoryPageLimit caps the transaction listing, matching the page
	// size the demo front end shows.
	HistoryPageLimit = 20
)
