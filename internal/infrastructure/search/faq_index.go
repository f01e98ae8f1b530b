// Package search keeps an in-memory full-text index of active FAQs so chat
// messages can be answered from the closest question.
package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/sangkips/enquiry-api/internal/domain/entity"
)

type faqDoc struct {
	Question string `json:"question"`
	Keywords string `json:"keywords"`
	Category string `json:"category"`
}

// FAQIndex answers free-text questions with the best matching FAQ
type FAQIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	faqs  map[string]entity.FAQ
}

// NewFAQIndex creates an empty index
func NewFAQIndex() (*FAQIndex, error) {
	idx, err := bleve.NewMemOnly(faqMapping())
	if err != nil {
		return nil, fmt.Errorf("create faq index: %w", err)
	}
	return &FAQIndex{index: idx, faqs: map[string]entity.FAQ{}}, nil
}

func faqMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("question", text)
	doc.AddFieldMappingsAt("keywords", text)
	doc.AddFieldMappingsAt("category", text)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = en.AnalyzerName
	return m
}

// Rebuild replaces the indexed set with faqs. Inactive entries are skipped.
func (x *FAQIndex) Rebuild(faqs []entity.FAQ) error {
	idx, err := bleve.NewMemOnly(faqMapping())
	if err != nil {
		return fmt.Errorf("create faq index: %w", err)
	}

	byID := make(map[string]entity.FAQ, len(faqs))
	batch := idx.NewBatch()
	for _, f := range faqs {
		if !f.Active {
			continue
		}
		id := f.ID.Hex()
		byID[id] = f
		if err := batch.Index(id, faqDoc{
			Question: f.Question,
			Keywords: strings.Join(f.Keywords, " "),
			Category: f.Category,
		}); err != nil {
			_ = idx.Close()
			return fmt.Errorf("index faq %s: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return fmt.Errorf("index faqs: %w", err)
	}

	x.mu.Lock()
	old := x.index
	x.index, x.faqs = idx, byID
	x.mu.Unlock()
	return old.Close()
}

// Match returns the best FAQ for text when its score reaches minScore
func (x *FAQIndex) Match(text string, minScore float64) (*entity.FAQ, float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, nil
	}

	question := bleve.NewMatchQuery(text)
	question.SetField("question")
	question.SetBoost(2)
	keywords := bleve.NewMatchQuery(text)
	keywords.SetField("keywords")
	category := bleve.NewMatchQuery(text)
	category.SetField("category")
	category.SetBoost(0.5)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery([]query.Query{question, keywords, category}...), 1, 0, false)

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.index.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search faqs: %w", err)
	}
	if len(res.Hits) == 0 || res.Hits[0].Score < minScore {
		return nil, 0, nil
	}
	hit := res.Hits[0]
	faq, ok := x.faqs[hit.ID]
	if !ok {
		return nil, 0, nil
	}
	return &faq, hit.Score, nil
}

// Size returns the number of indexed FAQs
func (x *FAQIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.faqs)
}

func (x *FAQIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}
