package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/tenin/internal/embedding"
	"github.com/hyperjump/tenin/internal/models"
)

// LoadCatalogDir reads every product file in dir (*.json and *.xlsx), in
// lexical filename order so corpus insertion order is stable across runs.
func LoadCatalogDir(dir string) ([]*models.Product, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".json" || ext == ".xlsx" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var products []*models.Product
	for _, name := range names {
		path := filepath.Join(dir, name)
		var batch []*models.Product
		switch strings.ToLower(filepath.Ext(name)) {
		case ".json":
			batch, err = LoadCatalogJSON(path)
		case ".xlsx":
			batch, err = LoadCatalogXLSX(path)
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		products = append(products, batch...)
	}
	return products, nil
}

// LoadCatalogJSON reads one JSON catalog file: an array of product records.
func LoadCatalogJSON(path string) ([]*models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}
	for _, p := range products {
		finalizeProduct(p)
	}
	return products, nil
}

// xlsx column layout of a catalog sheet (first sheet, header row skipped).
const (
	colID = iota
	colName
	colCategory
	colBrand
	colPriceDisplay
	colPriceNumeric
	colFeatures
	colSizes
	colLink
	colImage
	colCount
)

// LoadCatalogXLSX reads one Excel catalog sheet. The sizes column encodes
// variations as "S:3|M:0|XL:1" (size label : stock count).
func LoadCatalogXLSX(path string) ([]*models.Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	products := make([]*models.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		p, rowErr := productFromRow(row)
		if rowErr != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, rowErr)
		}
		if p == nil {
			continue
		}
		finalizeProduct(p)
		products = append(products, p)
	}
	return products, nil
}

func productFromRow(row []string) (*models.Product, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	if cell(colName) == "" {
		return nil, nil
	}
	p := &models.Product{
		ID:           cell(colID),
		Name:         cell(colName),
		Category:     cell(colCategory),
		Brand:        cell(colBrand),
		PriceDisplay: cell(colPriceDisplay),
		FeaturesFlat: cell(colFeatures),
		Link:         cell(colLink),
		Image:        cell(colImage),
	}
	if raw := cell(colPriceNumeric); raw != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("bad price_numeric %q: %w", raw, err)
		}
		p.PriceNumeric = &v
	}
	if raw := cell(colSizes); raw != "" {
		variations, err := parseVariations(raw)
		if err != nil {
			return nil, err
		}
		p.Variations = variations
	}
	return p, nil
}

// parseVariations parses "S:3|M:0|XL:1" into size/stock pairs. A bare size
// without a count gets stock 0 with an empty label.
func parseVariations(raw string) ([]models.Variation, error) {
	parts := strings.Split(raw, "|")
	variations := make([]models.Variation, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		size, count, found := strings.Cut(part, ":")
		v := models.Variation{Size: strings.ToUpper(strings.TrimSpace(size))}
		if found {
			count = strings.TrimSpace(count)
			n, err := strconv.Atoi(count)
			if err != nil {
				// Non-numeric counts are stock-level labels ("low", "out").
				v.StockLabel = strings.ToLower(count)
			} else {
				v.Stock = n
			}
		}
		variations = append(variations, v)
	}
	return variations, nil
}

// finalizeProduct fills derived fields: a generated ID when absent, a
// normalized category, and a negative-price guard.
func finalizeProduct(p *models.Product) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Category = models.NormalizeCategory(p.Category)
	if p.PriceNumeric != nil && *p.PriceNumeric < 0 {
		p.PriceNumeric = nil
	}
}

// EmbedProducts computes and attaches embeddings for every record that does
// not already carry one (records restored from a snapshot are skipped).
func EmbedProducts(ctx context.Context, embedder embedding.Embedder, products []*models.Product) error {
	var pending []*models.Product
	var texts []string
	for _, p := range products {
		if len(p.Embedding) > 0 {
			continue
		}
		pending = append(pending, p)
		texts = append(texts, p.EmbeddingText())
	}
	if len(pending) == 0 {
		return nil
	}
	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed catalog: %w", err)
	}
	if len(embeddings) != len(pending) {
		return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(pending))
	}
	for i, p := range pending {
		p.Embedding = embeddings[i]
	}
	return nil
}
