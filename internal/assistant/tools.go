package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperjump/tenin/internal/llm"
	"github.com/hyperjump/tenin/internal/models"
)

// ToolName is the single tool exposed to the model.
const ToolName = "query_knowledge_base"

// queryToolSchema is the JSON Schema of the tool arguments. Field names match
// models.Query tags so arguments unmarshal directly.
const queryToolSchema = `{
	"type": "object",
	"properties": {
		"query_input": {
			"type": "string",
			"description": "The user's product request, rephrased as a search query"
		},
		"query_category": {
			"type": "string",
			"description": "Product category, e.g. helmets, riding apparel, motorcycle tires"
		},
		"brand": {
			"type": "string",
			"description": "Brand name if the user asked for one"
		},
		"price_min": {
			"type": "number",
			"description": "Lower price bound. Shorthand amounts are accepted, e.g. 2.5 for 2.5 million"
		},
		"price_max": {
			"type": "number",
			"description": "Upper price bound, same shorthand as price_min"
		},
		"price_tolerance": {
			"type": "number",
			"description": "How far outside the price range an item may fall and still be offered"
		},
		"size_preferences": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Requested sizes, e.g. [\"M\", \"L\"]"
		},
		"feature_keywords": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Desired features, e.g. [\"waterproof\", \"lightweight\"]"
		}
	},
	"required": ["query_input"]
}`

// queryToolDef builds the tool definition offered on the draft pass.
func queryToolDef() llm.ToolDef {
	return llm.ToolDef{
		Name:        ToolName,
		Description: "Search the product catalog. Use for every question about products, prices, sizes or availability.",
		Parameters:  json.RawMessage(queryToolSchema),
	}
}

// parseQueryArgs decodes tool-call arguments into a structured query and
// backfills any filter the model left unset with one extracted heuristically
// from the raw user message.
func parseQueryArgs(arguments, userMessage string) (*models.Query, error) {
	var q models.Query
	if err := json.Unmarshal([]byte(arguments), &q); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}
	if strings.TrimSpace(q.Text) == "" {
		q.Text = userMessage
	}
	mergeExtracted(&q, ExtractFilters(userMessage))
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// mergeExtracted fills unset query fields from heuristic extraction. Fields
// the model set always win.
func mergeExtracted(q *models.Query, f *Filters) {
	if f == nil {
		return
	}
	if q.Category == "" {
		q.Category = f.Category
	}
	if q.Brand == "" {
		q.Brand = f.Brand
	}
	if q.PriceMin == nil {
		q.PriceMin = f.PriceMin
	}
	if q.PriceMax == nil {
		q.PriceMax = f.PriceMax
	}
	if len(q.SizePreferences) == 0 {
		q.SizePreferences = f.Sizes
	}
	if len(q.FeatureKeywords) == 0 {
		q.FeatureKeywords = f.Features
	}
}
