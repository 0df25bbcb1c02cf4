package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// CategoryCount is the number of labels of a table in one category.
type CategoryCount struct {
	Category string
	Labels   int64
}

// Coverage is the number of translated labels of a table per language.
type Coverage struct {
	Code   string
	Labels int64
}

// Querier reads string table statistics back from the graph.
type Querier struct {
	driver neo4j.DriverWithContext
}

// NewQuerier creates a new graph querier.
func NewQuerier(driver neo4j.DriverWithContext) *Querier {
	return &Querier{driver: driver}
}

// CategoryCounts returns the label count per category of table, largest first.
func (q *Querier) CategoryCounts(ctx context.Context, table string) ([]CategoryCount, error) {
	session := q.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (:StringTable {name: $table})-[:HAS_LABEL]->(l:Label)-[:IN_CATEGORY]->(c:Category)
		RETURN c.name AS category, count(l) AS labels
		ORDER BY labels DESC, category
	`, map[string]any{"table": table})
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	var counts []CategoryCount
	for result.Next(ctx) {
		record := result.Record()
		category, _ := record.Get("category")
		labels, _ := record.Get("labels")
		n, _ := labels.(int64)
		counts = append(counts, CategoryCount{Category: fmt.Sprintf("%v", category), Labels: n})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}

	log.Debug().Str("table", table).Int("categories", len(counts)).Msg("Graph category query complete")
	return counts, nil
}

// LanguageCoverage returns how many labels of table carry each language.
func (q *Querier) LanguageCoverage(ctx context.Context, table string) ([]Coverage, error) {
	session := q.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (:StringTable {name: $table})-[:HAS_LABEL]->(:Label)-[:TRANSLATION]->(lang:Language)
		RETURN lang.code AS code, count(*) AS labels
		ORDER BY code
	`, map[string]any{"table": table})
	if err != nil {
		return nil, fmt.Errorf("query coverage: %w", err)
	}

	var coverage []Coverage
	for result.Next(ctx) {
		record := result.Record()
		code, _ := record.Get("code")
		labels, _ := record.Get("labels")
		n, _ := labels.(int64)
		coverage = append(coverage, Coverage{Code: fmt.Sprintf("%v", code), Labels: n})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read coverage: %w", err)
	}
	return coverage, nil
}
