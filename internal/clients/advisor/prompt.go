package advisor

import "fmt"

const promptTemplate = `You are a professional AI Plant Pathologist and Agricultural Advisor.

Current Findings:
- Detected Disease: %s
- Current Weather at Location: %s

Instructions:
1. Explain what this disease is briefly.
2. Provide 3 specific treatment steps.
3. IMPORTANT: Give custom advice based on the weather.
   (e.g., If it's humid, suggest better spacing. If it's raining, warn about fungal spread. If it's hot, suggest watering timing).
4. Provide 2 prevention tips.

Format: Use clear Markdown with headings.`

func buildPrompt(disease, weatherSummary string) string {
	return fmt.Sprintf(promptTemplate, disease, weatherSummary)
}
