package llm

// costPerToken stores per-1K-token pricing for known models.
// Prices in USD per 1K tokens: [input, output].
var costPerToken = map[string][2]float64{
	// Gemini
	"gemini-2.5-flash": {0.0003, 0.0025},
	"gemini-2.5-pro":   {0.00125, 0.01},
	"gemini-2.0-flash": {0.0001, 0.0004},

	// OpenAI
	"gpt-4o":       {0.0025, 0.01},
	"gpt-4o-mini":  {0.00015, 0.0006},
	"gpt-4.1-mini": {0.0004, 0.0016},

	// Anthropic
	"claude-3-5-haiku-latest":  {0.0008, 0.004},
	"claude-sonnet-4-20250514": {0.003, 0.015},
}

// CalculateCost returns the USD cost of a call; unknown and local models
// cost nothing.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	prices, ok := costPerToken[model]
	if !ok {
		return 0
	}
	inputCost := float64(inputTokens) / 1000.0 * prices[0]
	outputCost := float64(outputTokens) / 1000.0 * prices[1]
	return inputCost + outputCost
}
