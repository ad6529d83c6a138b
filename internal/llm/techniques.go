package llm

import (
	"encoding/json"
	"fmt"

	"optimo-ai/internal/domain/models"
)

// The technique templates embed the option set as JSON; struct field order
// keeps the rendering deterministic.
func optionsJSON(opts models.OptimizationOptions) string {
	raw, err := json.Marshal(opts)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// ChainOfThought renders the step-by-step reasoning template.
func (c *Composer) ChainOfThought(userPrompt string, opts models.OptimizationOptions) string {
	return fmt.Sprintf(`You are an expert prompt engineer. Optimize the following prompt using Chain-of-Thought reasoning.

Step 1: Analyze the original prompt for clarity, specificity, and potential ambiguities.
Step 2: Identify areas for improvement including structure, context, and expected output.
Step 3: Apply best practices for prompt engineering.
Step 4: Provide the optimized version.

Original prompt: "%s"

Options: %s

Follow this chain of thought and provide only the final optimized prompt as your response:`, userPrompt, optionsJSON(opts))
}

// ReAct renders the Reasoning + Acting template.
func (c *Composer) ReAct(userPrompt string, opts models.OptimizationOptions) string {
	return fmt.Sprintf(`You are an expert prompt engineer using the ReAct (Reasoning + Acting) approach.

Thought: I need to analyze this prompt and determine what makes it effective or ineffective.
Action: Analyze the prompt structure, clarity, and completeness.
Observation: [Analyze the prompt]

Thought: Based on my analysis, I should identify specific improvements.
Action: List concrete improvements needed.
Observation: [List improvements]

Thought: Now I'll create an optimized version incorporating these improvements.
Action: Generate the optimized prompt.

Original prompt: "%s"
Options: %s

Please follow the ReAct pattern above and provide the final optimized prompt:`, userPrompt, optionsJSON(opts))
}

// SelfCorrection renders the iterative-refinement template.
func (c *Composer) SelfCorrection(userPrompt string, opts models.OptimizationOptions) string {
	return fmt.Sprintf(`You are an expert prompt engineer with self-correction capabilities. Your task is to optimize this prompt through iterative refinement.

First attempt: Analyze and optimize this prompt:
"%s"

Now, critically evaluate your first optimization:
- Is it clear and unambiguous?
- Does it provide sufficient context?
- Will it produce the desired output?
- Are there any potential issues?

Self-correction: Based on your evaluation, provide a final, improved version.

Options to consider: %s

Provide only the final optimized prompt:`, userPrompt, optionsJSON(opts))
}

// EthicalRefinement renders the ethics-review template.
func (c *Composer) EthicalRefinement(userPrompt string, opts models.OptimizationOptions) string {
	return fmt.Sprintf(`You are an expert prompt engineer specializing in ethical AI interactions. Review and optimize this prompt while ensuring it adheres to ethical guidelines.

Original prompt: "%s"

Ethical considerations:
1. Check for potential bias or harmful content
2. Ensure inclusivity and fairness
3. Remove any discriminatory language
4. Maintain respectful tone
5. Consider potential misuse

Optimization guidelines: %s

Provide an optimized, ethically-refined version of the prompt:`, userPrompt, optionsJSON(opts))
}
