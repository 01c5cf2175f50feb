package categorization

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SuggestionDocument is one indexed vocabulary entry: a canonical
// category label plus its keyword text for one language.
type SuggestionDocument struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Language string `json:"language"`
	Keywords string `json:"keywords"` // space-joined keywords, full-text searched
}

// Suggestion is a ranked category proposal for a piece of item text.
type Suggestion struct {
	Label string
	Score float64 // relevance score from the index
}

// SuggestionIndex answers "which category does this text sound like"
// with full-text search over the keyword vocabulary. Unlike the exact
// cascade it tolerates typos and partial words, which makes it the
// right surface for interactive suggestions.
type SuggestionIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex
	path    string // empty for in-memory
}

// NewSuggestionIndex creates a suggestion index over the built-in
// vocabulary. An empty path keeps the index in memory; a non-empty path
// creates or opens a persistent one.
func NewSuggestionIndex(path string) (*SuggestionIndex, error) {
	si := &SuggestionIndex{path: path}

	var index bleve.Index
	var err error

	indexMapping := buildIndexMapping()

	if path == "" {
		index, err = bleve.NewMemOnly(indexMapping)
	} else {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
			}
			index, err = bleve.New(path, indexMapping)
		} else {
			index, err = bleve.Open(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	si.index = index

	if err := si.indexVocabulary(); err != nil {
		_ = index.Close()
		return nil, err
	}

	return si, nil
}

// buildIndexMapping creates the Bleve mapping for vocabulary documents.
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("label", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("language", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("keywords", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name

	return indexMapping
}

// indexVocabulary loads every (label, language) keyword list as one
// document.
func (si *SuggestionIndex) indexVocabulary() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	batch := si.index.NewBatch()

	for _, v := range vocabularies {
		for lang, words := range v.words {
			doc := SuggestionDocument{
				ID:       fmt.Sprintf("%s_%s", v.label, lang),
				Label:    v.label,
				Language: lang,
				Keywords: v.label + " " + strings.Join(words, " "),
			}
			if err := batch.Index(doc.ID, doc); err != nil {
				return fmt.Errorf("failed to index vocabulary %s/%s: %w", v.label, lang, err)
			}
		}
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}

	return nil
}

// Suggest returns category labels ranked by relevance to the query,
// deduplicated across languages. Queries tolerate one edit of typo.
func (si *SuggestionIndex) Suggest(query string, limit int) ([]Suggestion, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	matchQuery := bleve.NewMatchQuery(strings.ToLower(query))
	matchQuery.SetField("keywords")
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	// Over-fetch so per-language duplicates of one label still leave
	// enough distinct labels.
	searchRequest.Size = limit * 3
	searchRequest.Fields = []string{"label"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("suggestion search failed: %w", err)
	}

	seen := make(map[string]struct{})
	suggestions := make([]Suggestion, 0, limit)
	for _, hit := range searchResults.Hits {
		label, ok := hit.Fields["label"].(string)
		if !ok {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		suggestions = append(suggestions, Suggestion{Label: label, Score: hit.Score})
		if len(suggestions) == limit {
			break
		}
	}

	return suggestions, nil
}

// DocumentCount returns the number of documents in the index.
func (si *SuggestionIndex) DocumentCount() (uint64, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	return si.index.DocCount()
}

// Close closes the index.
func (si *SuggestionIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	if si.index != nil {
		return si.index.Close()
	}
	return nil
}
