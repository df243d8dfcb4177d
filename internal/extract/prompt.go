package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/pennywise-bot/pennywise/internal/llm"
	"github.com/pennywise-bot/pennywise/internal/model"
)

// buildExtractionRequest assembles the fixed few-shot conversation: a system
// instruction pinning the output schema, four worked examples, then the real
// input as the final turn. Today's date/time and the category list are
// injected so relative dates resolve deterministically.
func buildExtractionRequest(text string, now time.Time, categories []string) llm.ExtractionRequest {
	today := now.Format(model.DateLayout)
	timeOfDay := now.Format(model.TimeLayout)
	yesterday := now.AddDate(0, 0, -1).Format(model.DateLayout)

	system := fmt.Sprintf(`You extract structured expense records from short informal messages.

Today's date is %s and the current time is %s.
Allowed categories: %s.

Respond with ONLY a JSON object with exactly these keys:
{"amount": number, "category": string, "description": string, "date": string, "time": string, "merchant": string or null}

Rules:
- amount is the money spent, as a plain number.
- category is the best fit from the allowed list, lowercase.
- date uses the form "%s" and time the form "%s". Resolve relative words like "yesterday" against today's date.
- When the message does not mention a merchant, use null.
- Never output markdown, commentary, or anything besides the JSON object.`,
		today, timeOfDay, strings.Join(categories, ", "), today, timeOfDay)

	examples := []llm.Exchange{
		{
			Input:  "Spent 500 on swiggy for groceries",
			Output: fmt.Sprintf(`{"amount": 500, "category": "grocery", "description": "groceries", "date": %q, "time": %q, "merchant": "swiggy"}`, today, timeOfDay),
		},
		{
			Input:  "Paid 349 to zomato for dinner",
			Output: fmt.Sprintf(`{"amount": 349, "category": "food", "description": "dinner", "date": %q, "time": %q, "merchant": "zomato"}`, today, timeOfDay),
		},
		{
			Input:  "I paid 349 to zomato for dinner yesterday",
			Output: fmt.Sprintf(`{"amount": 349, "category": "food", "description": "dinner", "date": %q, "time": %q, "merchant": "zomato"}`, yesterday, timeOfDay),
		},
		{
			Input:  "Lunch 120",
			Output: fmt.Sprintf(`{"amount": 120, "category": "food", "description": "lunch", "date": %q, "time": %q, "merchant": null}`, today, timeOfDay),
		},
	}

	return llm.ExtractionRequest{
		System:   system,
		Examples: examples,
		Input:    text,
	}
}
