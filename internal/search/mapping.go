package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for video documents.
//
// Priorities:
//  1. Fast full-text search on titles with English stemming
//  2. Exact keyword matching for category and creator filters
//  3. Numeric range queries for duration
//  4. Term vectors on the title for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Title - primary search target.
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Description - searchable but not stored (too large).
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// Creator username - simple analyzer, usernames shouldn't be stemmed.
	creatorFieldMapping := bleve.NewTextFieldMapping()
	creatorFieldMapping.Analyzer = simple.Name
	creatorFieldMapping.Store = true
	creatorFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("creator", creatorFieldMapping)

	// Category names - searchable text.
	categoryNamesFieldMapping := bleve.NewTextFieldMapping()
	categoryNamesFieldMapping.Analyzer = en.AnalyzerName
	categoryNamesFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category_names", categoryNamesFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	creatorIDFieldMapping := bleve.NewTextFieldMapping()
	creatorIDFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("creator_id", creatorIDFieldMapping)

	categoryIDsFieldMapping := bleve.NewTextFieldMapping()
	categoryIDsFieldMapping.Analyzer = keyword.Name
	categoryIDsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("category_ids", categoryIDsFieldMapping)

	parentIDsFieldMapping := bleve.NewTextFieldMapping()
	parentIDsFieldMapping.Analyzer = keyword.Name
	parentIDsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("parent_ids", parentIDsFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	durationFieldMapping := bleve.NewNumericFieldMapping()
	durationFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("duration_secs", durationFieldMapping)

	viewsFieldMapping := bleve.NewNumericFieldMapping()
	viewsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("views", viewsFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
