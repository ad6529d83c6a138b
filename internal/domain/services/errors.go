package services

import (
	"fmt"
)

// ValidationError covers locally detectable bad input; it never reaches a
// provider.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// QuotaExceededError is the entitlement denial for a user over their daily
// optimization limit.
type QuotaExceededError struct {
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Daily limit of %d optimizations reached", e.Limit)
}

// PremiumFeatureError is returned when a freemium request asks for a
// premium-gated option. Feature names the offending option so the UI can
// render an upgrade prompt.
type PremiumFeatureError struct {
	Feature string
}

func (e *PremiumFeatureError) Error() string {
	return fmt.Sprintf("Premium feature required: %s. Upgrade to Premium to use advanced tones and output formats.", e.Feature)
}

// UnlimitedFeatureError is the same for unlimited-only options.
type UnlimitedFeatureError struct {
	Feature string
}

func (e *UnlimitedFeatureError) Error() string {
	return fmt.Sprintf("Unlimited feature required: %s. Upgrade to Unlimited to use advanced optimization techniques.", e.Feature)
}
