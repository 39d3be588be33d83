package constants

const (
	// AppName is used for config paths, log prefixes and keyring entries
	AppName = "memoplan"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard clock time format used at the CLI/storage boundary (HH:MM)
	TimeFormat = "15:04"

	// KeyringEnrichmentUser identifies the enrichment API key entry in the OS keyring
	KeyringEnrichmentUser = "enrichment-api-key"

	// MinViableGapMin is the smallest gap fragment worth keeping after
	// subtracting accepted blocks
	MinViableGapMin = 5

	// ResizeSnapMin is the increment accepted-block resizes snap to
	ResizeSnapMin = 5
)
