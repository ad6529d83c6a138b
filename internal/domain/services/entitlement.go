package services

import (
	"strings"

	"optimo-ai/internal/domain/models"
)

// Tones that require at least the premium tier.
var premiumTones = map[string]bool{
	"academic":     true,
	"journalistic": true,
	"technical":    true,
	"legal":        true,
}

// EntitlementEngine decides whether a tier may perform a request. It is a
// pure decision function: no I/O, no clock, no mutation.
type EntitlementEngine struct{}

func NewEntitlementEngine() *EntitlementEngine {
	return &EntitlementEngine{}
}

// CheckRequest returns nil when the request is allowed, or a typed denial:
// *QuotaExceededError, *PremiumFeatureError, or *UnlimitedFeatureError.
func (e *EntitlementEngine) CheckRequest(status models.SubscriptionStatus, opts models.OptimizationOptions, usageToday int) error {
	if limit := status.DailyLimit(); limit >= 0 && usageToday >= limit {
		return &QuotaExceededError{Limit: limit, Used: usageToday}
	}

	if status == models.StatusFreemium {
		if premiumTones[strings.ToLower(opts.Tone)] {
			return &PremiumFeatureError{Feature: "tone"}
		}
		if opts.OutputFormat != "" && !strings.EqualFold(opts.OutputFormat, "default") {
			return &PremiumFeatureError{Feature: "output_format"}
		}
		if strings.TrimSpace(opts.NegativePrompt) != "" {
			return &PremiumFeatureError{Feature: "negative_prompt"}
		}
	}

	if !status.Unlimited() {
		if opts.AdvancedTechnique != "" {
			return &UnlimitedFeatureError{Feature: "advanced_technique"}
		}
		if opts.EthicalRefinement {
			return &UnlimitedFeatureError{Feature: "ethical_refinement"}
		}
	}

	return nil
}

// Capabilities is the feature set a tier enables, exposed so the UI can
// gate its controls without re-deriving the rules.
type Capabilities struct {
	DailyLimit         int  `json:"daily_limit"`
	HistoryRetention   int  `json:"history_retention"`
	PremiumTones       bool `json:"premium_tones"`
	OutputFormats      bool `json:"output_formats"`
	NegativePrompting  bool `json:"negative_prompting"`
	AdvancedTechniques bool `json:"advanced_techniques"`
	EthicalRefinement  bool `json:"ethical_refinement"`
	PromptTemplates    bool `json:"prompt_templates"`
}

func CapabilitiesFor(status models.SubscriptionStatus) Capabilities {
	return Capabilities{
		DailyLimit:         status.DailyLimit(),
		HistoryRetention:   status.HistoryRetention(),
		PremiumTones:       status.AtLeastPremium(),
		OutputFormats:      status.AtLeastPremium(),
		NegativePrompting:  status.AtLeastPremium(),
		AdvancedTechniques: status.Unlimited(),
		EthicalRefinement:  status.Unlimited(),
		PromptTemplates:    status.Unlimited(),
	}
}
