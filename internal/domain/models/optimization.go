package models

import (
	"time"
)

// Advanced optimization techniques available to unlimited-tier users.
const (
	TechniqueChainOfThought    = "chain-of-thought"
	TechniqueReAct             = "react"
	TechniqueSelfCorrection    = "self-correction"
	TechniqueEthicalRefinement = "ethical-refinement"
)

// OptimizationOptions carries the per-request constraints the user picked in
// the toolbar. Every field is optional; WithDefaults fills the blanks.
type OptimizationOptions struct {
	Tone              string `json:"tone,omitempty"`
	Length            string `json:"length,omitempty"`
	Persona           string `json:"persona,omitempty"`
	Audience          string `json:"audience,omitempty"`
	OutputFormat      string `json:"output_format,omitempty"`
	NegativePrompt    string `json:"negative_prompt,omitempty"`
	AdvancedTechnique string `json:"advanced_technique,omitempty"`
	EthicalRefinement bool   `json:"ethical_refinement,omitempty"`
}

// WithDefaults returns a copy with the documented defaults applied:
// tone=professional, length=default, persona=expert, audience=general.
func (o OptimizationOptions) WithDefaults() OptimizationOptions {
	if o.Tone == "" {
		o.Tone = "professional"
	}
	if o.Length == "" {
		o.Length = "default"
	}
	if o.Persona == "" {
		o.Persona = "expert"
	}
	if o.Audience == "" {
		o.Audience = "general"
	}
	return o
}

type OptimizeRequest struct {
	UserID     string              `json:"user_id"`
	PromptText string              `json:"prompt_text"`
	Options    OptimizationOptions `json:"options"`
}

type OptimizeResult struct {
	OptimizedPrompt string `json:"optimized_prompt"`
	// UsageRemaining is the number of optimizations left today, -1 for
	// unmetered tiers.
	UsageRemaining int `json:"usage_remaining"`
}

type HistoryEntry struct {
	ID              int64     `json:"id" db:"id"`
	UserID          string    `json:"-" db:"user_id"`
	OriginalPrompt  string    `json:"original_prompt" db:"original_prompt"`
	OptimizedPrompt string    `json:"optimized_prompt" db:"optimized_prompt"`
	OptionsUsed     string    `json:"options_used" db:"options_used"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
