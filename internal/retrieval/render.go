package retrieval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/tenin/internal/models"
	"github.com/hyperjump/tenin/pkg/utils"
)

// RenderedItem is one entry of a rendered result list.
type RenderedItem struct {
	Rank     int      `json:"rank"`
	Tier     string   `json:"tier"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	StockNote string  `json:"stock_note,omitempty"`
	Sizes    []string `json:"sizes,omitempty"`
	Features string   `json:"features,omitempty"`
	Image    string   `json:"image,omitempty"`
	Link     string   `json:"link,omitempty"`
	// Note explains, for Near-tier items, why the item is not an exact match.
	Note string `json:"note,omitempty"`
}

// Result is the bounded, ordered outcome of one retrieval call.
type Result struct {
	Items []RenderedItem `json:"items"`
	Query string         `json:"query"`
}

// Format renders the result as the text block handed to the grounding
// generation step as a tool message.
func (r *Result) Format() string {
	blocks := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s**\n", item.Rank, item.Name)
		fmt.Fprintf(&b, "Price: %s\n", item.Price)
		if item.StockNote != "" {
			fmt.Fprintf(&b, "%s\n", item.StockNote)
		}
		if len(item.Sizes) > 0 {
			fmt.Fprintf(&b, "Sizes: %s\n", strings.Join(item.Sizes, ", "))
		}
		if item.Features != "" {
			fmt.Fprintf(&b, "Features: %s\n", item.Features)
		}
		if item.Image != "" {
			fmt.Fprintf(&b, "Image: %s\n", item.Image)
		}
		if item.Link != "" {
			fmt.Fprintf(&b, "Link: %s\n", item.Link)
		}
		if item.Note != "" {
			fmt.Fprintf(&b, "Note: %s\n", item.Note)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n---\n\n")
}

// Renderer formats tiered, ranked candidates into a bounded result list with
// per-item advisory notes.
type Renderer struct {
	config *Config
}

// NewRenderer creates a renderer with the given configuration.
func NewRenderer(config *Config) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	return &Renderer{config: config}
}

// Render emits at most MaxResults items. Exact candidates fill the budget
// first and are never truncated in favor of Near candidates; Near candidates
// take whatever budget remains and carry an advisory note.
func (rd *Renderer) Render(exact, near []*Candidate, q *models.Query) *Result {
	budget := rd.config.MaxResults
	result := &Result{Query: q.Text}

	for _, cand := range exact {
		if len(result.Items) >= budget {
			break
		}
		result.Items = append(result.Items, rd.renderItem(cand, TierExact, len(result.Items)+1, ""))
	}
	for _, cand := range near {
		if len(result.Items) >= budget {
			break
		}
		note := rd.advisoryNote(cand, q)
		result.Items = append(result.Items, rd.renderItem(cand, TierNear, len(result.Items)+1, note))
	}
	return result
}

func (rd *Renderer) renderItem(cand *Candidate, tier Tier, rank int, note string) RenderedItem {
	p := cand.Product
	price := p.PriceDisplay
	if price == "" && p.Priced() {
		price = formatAmount(*p.PriceNumeric)
	}
	if price == "" {
		price = "price unavailable"
	}
	return RenderedItem{
		Rank:      rank,
		Tier:      tier.String(),
		Name:      p.Name,
		Price:     price,
		StockNote: rd.stockNote(p),
		Sizes:     p.Sizes(),
		Features:  p.FeaturesFlat,
		Image:     p.Image,
		Link:      p.Link,
		Note:      note,
	}
}

// stockNote returns a warning when any variation's stock falls below the
// low-stock threshold (an explicit "low" stock label also counts).
func (rd *Renderer) stockNote(p *models.Product) string {
	for _, v := range p.Variations {
		if v.Stock > 0 && v.Stock < rd.config.LowStockThreshold {
			return "Limited stock!"
		}
		if strings.EqualFold(v.StockLabel, "low") {
			return "Limited stock!"
		}
	}
	return ""
}

// advisoryNote explains why a Near-tier item is not an exact match.
// Priority: missing size, then price proximity, then a generic fallback.
func (rd *Renderer) advisoryNote(cand *Candidate, q *models.Query) string {
	if cand.SizeRequested && !cand.SizeMatch {
		sizes := cand.Product.Sizes()
		if len(sizes) > 0 {
			return fmt.Sprintf("requested size not available (in stock: %s)", strings.Join(sizes, ", "))
		}
		return "requested size not available"
	}
	if cand.PriceDistance != 0 {
		gap := formatAmount(utils.Abs(cand.PriceDistance))
		if cand.PriceStatus == PriceCheaper {
			return fmt.Sprintf("%s below your requested price range", gap)
		}
		return fmt.Sprintf("%s above your requested price range", gap)
	}
	return "similar item"
}

// formatAmount renders a canonical currency amount with thousands separators.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
