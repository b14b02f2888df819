package provider

import "fmt"

// smartTemplate mirrors the instruction the bot has always sent; keeping
// the wording stable keeps reformatted objectives consistent over time.
const smartTemplate = `Please structure this business objective into a SMART goal format
(Specific, Measurable, Achievable, Relevant, Time-bound):

Objective: %s

Format your response as:
1. Structured Objective:
2. Key Metrics:
3. Suggested Timeline:`

// SMARTPrompt builds the reformatting instruction for one objective.
func SMARTPrompt(objective string) string {
	return fmt.Sprintf(smartTemplate, objective)
}
