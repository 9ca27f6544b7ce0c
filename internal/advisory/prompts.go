package advisory

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"shelfkeeper/internal/domain"
)

const labelPrompt = "Analyze this retail product image. Extract the Barcode (numbers), the Expiry Date (YYYY-MM-DD), the Product Name, and Category. If you can't clearly see the date, estimate or leave null."

func bundlePrompt(names []string) string {
	items := strings.Join(names, ", ")
	if len(names) > 1 {
		return fmt.Sprintf(`I have a convenience store. These items are expiring soon: %s. Suggest a creative "Bundle Deal" name and a short 1-sentence marketing hook.`, items)
	}
	return fmt.Sprintf(`I have a convenience store. This item is expiring soon: %s. Suggest a creative "Flash Sale" name and a short 1-sentence marketing hook.`, items)
}

func pricePrompt(q PriceQuery) string {
	return fmt.Sprintf(`Product: %s
Original Price: £%s
Days until expiry: %d
Category: %s

Suggest a clearance price to ensure it sells before expiry. Return JSON: { "suggestedPrice": number, "reasoning": string }`,
		q.ProductName, q.Price.StringFixed(2), q.DaysUntilExpiry, q.Category)
}

var (
	labelSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"barcode":     {Type: genai.TypeString},
			"expiryDate":  {Type: genai.TypeString},
			"productName": {Type: genai.TypeString},
			"category":    {Type: genai.TypeString, Enum: categoryNames()},
		},
		Required: []string{"barcode"},
	}
	bundleSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":   {Type: genai.TypeString},
			"tagline": {Type: genai.TypeString},
		},
		Required: []string{"title", "tagline"},
	}
	priceSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestedPrice": {Type: genai.TypeNumber},
			"reasoning":      {Type: genai.TypeString},
		},
	}
)

func categoryNames() []string {
	out := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, string(c))
	}
	return out
}
