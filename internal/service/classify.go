package service

import "ecoroute/internal/models"

// Collection thresholds. They mirror the firmware on the bins and must
// stay in sync with it.
const (
	FullLevel   = 90  // %
	SmellyGas   = 200 // MQ2 ppm
	SmellyLevel = 60  // %, gas alone never triggers
)

// Classify maps a bin's readings to its collection urgency. FULL takes
// precedence over SMELLY when both hold.
func Classify(b models.Bin) models.Status {
	switch {
	case b.Level >= FullLevel:
		return models.StatusFull
	case b.Smell >= SmellyGas && b.Level >= SmellyLevel:
		return models.StatusSmelly
	default:
		return models.StatusOK
	}
}

// NeedsCollection reports whether the bin belongs on the next route.
func NeedsCollection(b models.Bin) bool {
	return Classify(b) != models.StatusOK
}
