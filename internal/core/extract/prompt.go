package extract

import "strings"

// buildExtractionPrompt creates the instruction block sent with every
// document/image extraction call. categoryCodes is the catalog the model may
// use; an empty slice leaves classification to the keyword tier.
func buildExtractionPrompt(categoryCodes []string) string {
	var b strings.Builder

	b.WriteString("You are a credit-card invoice parser for Brazilian card statements (faturas).\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Parse ALL transactions in the attached invoice.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a JSON array of objects.\n\n")
	b.WriteString("Each object must have these fields:\n")
	b.WriteString("- \"merchant_name\": string, the merchant as printed\n")
	b.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"amount\": number, in currency units (positive for charges, negative for credits/refunds)\n")
	b.WriteString("- \"description\": string or empty\n")

	if len(categoryCodes) > 0 {
		b.WriteString("- \"category\": string, EXACTLY one of: ")
		b.WriteString(strings.Join(categoryCodes, ", "))
		b.WriteString(" — or empty if none fits\n")
	} else {
		b.WriteString("- \"category\": empty string\n")
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Ignore summary lines, totals, previous balance and payment lines.\n")
	b.WriteString("- Convert Brazilian number formats (\"1.234,56\") to plain decimals (1234.56).\n")
	b.WriteString("- Convert dd/mm dates to full ISO dates using the statement period.\n")
	b.WriteString("- Return ONLY valid raw JSON.\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n")
	b.WriteString("- Do NOT use ```json or any Markdown.\n")
	b.WriteString("- Output must begin with \"[\" and end with \"]\".\n")

	return b.String()
}
