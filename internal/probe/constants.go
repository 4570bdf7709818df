package probe

// Confidence bounds every pick must respect.
const (
	MinConfidence = 50
	MaxConfidence = 92
)

// Runner configuration constants.
const (
	DefaultWorkers       = 4
	PercentageMultiplier = 100
	maxBodyBytes         = 4 << 20
)
