package constants

const (
	// IDRandomBytes is the entropy behind generated row IDs.
	IDRandomBytes = 16

	// HistoryMaxLimit caps a single points-history page.
	HistoryMaxLimit = 100
)
