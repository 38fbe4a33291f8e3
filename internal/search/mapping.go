package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for catalog documents.
//
// Title and author are full-text with English stemming; genre is searchable
// with the simple analyzer and kept verbatim in genre_exact for filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = en.AnalyzerName
	authorFieldMapping.Store = true
	authorFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("author", authorFieldMapping)

	genreFieldMapping := bleve.NewTextFieldMapping()
	genreFieldMapping.Analyzer = simple.Name
	genreFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("genre", genreFieldMapping)

	genreExactFieldMapping := bleve.NewTextFieldMapping()
	genreExactFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("genre_exact", genreExactFieldMapping)

	availableFieldMapping := bleve.NewBooleanFieldMapping()
	availableFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("available", availableFieldMapping)

	// Catalog position, for stable ordering of equal scores.
	positionFieldMapping := bleve.NewNumericFieldMapping()
	positionFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("position", positionFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
