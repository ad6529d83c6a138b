package llm

import (
	"fmt"
	"strings"

	"optimo-ai/internal/domain/models"
)

// Composer renders the meta-prompt sent to the provider. Rendering is a
// pure string template: identical inputs always produce identical output.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// ComposeFor picks the technique-specific template for unlimited-tier
// requests that name one of the four advanced techniques, and the standard
// template for everything else.
func (c *Composer) ComposeFor(userPrompt string, opts models.OptimizationOptions, status models.SubscriptionStatus) string {
	if status.Unlimited() {
		switch opts.AdvancedTechnique {
		case models.TechniqueChainOfThought:
			return c.ChainOfThought(userPrompt, opts)
		case models.TechniqueReAct:
			return c.ReAct(userPrompt, opts)
		case models.TechniqueSelfCorrection:
			return c.SelfCorrection(userPrompt, opts)
		case models.TechniqueEthicalRefinement:
			return c.EthicalRefinement(userPrompt, opts)
		}
	}
	return c.Compose(userPrompt, opts, status)
}

// Compose renders the standard optimization meta-prompt. Constraint lines
// appear in a fixed order; premium and unlimited lines are emitted only for
// tiers that hold the feature. The user prompt is embedded verbatim between
// the --- fences, with no escaping.
func (c *Composer) Compose(userPrompt string, opts models.OptimizationOptions, status models.SubscriptionStatus) string {
	var b strings.Builder

	b.WriteString(`As an expert prompt engineer, your task is to refine and optimize the following user-provided prompt.
Your goal is to make it clearer, more concise, and more effective for a large language model.

**Optimization Constraints:**`)

	if opts.Tone != "" {
		fmt.Fprintf(&b, "\n- **Tone:** %s", toneInstruction(opts.Tone))
	}
	if opts.Length != "" {
		fmt.Fprintf(&b, "\n- **Length:** %s", lengthInstruction(opts.Length))
	}
	if opts.Persona != "" {
		fmt.Fprintf(&b, "\n- **Persona:** Optimize the prompt from the perspective of a %s.", opts.Persona)
	}
	if opts.Audience != "" {
		fmt.Fprintf(&b, "\n- **Target Audience:** The final output should be suitable for a %s audience.", opts.Audience)
	}

	if status.AtLeastPremium() {
		if opts.OutputFormat != "" {
			fmt.Fprintf(&b, "\n- **Output Format:** Structure the response as %s.", opts.OutputFormat)
		}
		if opts.NegativePrompt != "" {
			fmt.Fprintf(&b, "\n- **Negative Prompting:** Include appropriate \"do not\" clauses to prevent: %s.", opts.NegativePrompt)
		}
	}

	if status.Unlimited() {
		if opts.AdvancedTechnique != "" {
			fmt.Fprintf(&b, "\n- **Advanced Technique:** Apply %s methodology.", techniqueInstruction(opts.AdvancedTechnique))
		}
		if opts.EthicalRefinement {
			b.WriteString("\n- **Ethical Considerations:** Ensure the prompt promotes responsible AI usage and avoids potential misuse.")
		}
	}

	fmt.Fprintf(&b, `
- **Core Instructions:** Remove ambiguity, use strong action-oriented verbs, and make implicit instructions explicit.
- **Language:** Optimize the prompt while preserving its original language.

**User Prompt to Optimize:**
---
%s
---

Return ONLY the optimized prompt, with no additional commentary or explanation.`, userPrompt)

	return b.String()
}

var toneInstructions = map[string]string{
	"professional":  "Use a professional, business-appropriate tone",
	"friendly":      "Use a warm, approachable, and friendly tone",
	"direct":        "Use a clear, direct, and straightforward tone",
	"creative":      "Use an imaginative, innovative, and creative tone",
	"empathetic":    "Use a compassionate, understanding, and empathetic tone",
	"authoritative": "Use a confident, expert, and authoritative tone",
	"humorous":      "Use a light-hearted, witty, and humorous tone",
	"persuasive":    "Use a compelling, convincing, and persuasive tone",
	"analytical":    "Use a logical, systematic, and analytical tone",
	"academic":      "Use a scholarly, research-oriented, and academic tone",
	"journalistic":  "Use an objective, factual, and journalistic tone",
}

func toneInstruction(tone string) string {
	if instruction, ok := toneInstructions[strings.ToLower(tone)]; ok {
		return instruction
	}
	return fmt.Sprintf("Use a %s tone", tone)
}

var lengthInstructions = map[string]string{
	"concise":   "Keep the response brief and to the point",
	"default":   "Use an appropriate length for the content",
	"elaborate": "Provide detailed and comprehensive information",
}

func lengthInstruction(length string) string {
	if instruction, ok := lengthInstructions[strings.ToLower(length)]; ok {
		return instruction
	}
	return "Use an appropriate length for the content"
}

var techniqueInstructions = map[string]string{
	models.TechniqueChainOfThought: "Chain-of-Thought reasoning - break down complex problems into step-by-step logical reasoning",
	models.TechniqueReAct:          "ReAct (Reasoning and Acting) - combine reasoning and action-taking in an iterative process",
	models.TechniqueSelfCorrection: "Self-Correction - include instructions for the AI to review and refine its own output",
}

func techniqueInstruction(technique string) string {
	if instruction, ok := techniqueInstructions[strings.ToLower(technique)]; ok {
		return instruction
	}
	return technique
}
