package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"gametext/internal/language"
	"gametext/internal/model"
)

// LabelNode is the graph shape of one label across languages.
type LabelNode struct {
	Label        string
	Category     string
	Translations []Translation
}

// Translation is one language slot of a label.
type Translation struct {
	Code   string
	Name   string
	Text   string
	Speech string
}

// BuildLabelNodes turns packed entries into graph nodes. Only usable
// languages are exported since the graph keys translations by code.
func BuildLabelNodes(entries []model.MultiEntry) []LabelNode {
	nodes := make([]LabelNode, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		node := LabelNode{Label: e.Label, Category: model.CategoryOf(e.Label)}
		for _, id := range language.FilterUsable(e.Present).IDs() {
			node.Translations = append(node.Translations, Translation{
				Code:   language.CodeFor(id),
				Name:   language.NameFor(id),
				Text:   e.Text[id].String(),
				Speech: e.Speech[id],
			})
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Exporter writes string tables into the Neo4j graph:
//
//	(:StringTable)-[:HAS_LABEL]->(:Label)-[:IN_CATEGORY]->(:Category)
//	(:Label)-[:TRANSLATION {text, speech}]->(:Language)
type Exporter struct {
	driver neo4j.DriverWithContext
}

// NewExporter creates a new graph exporter.
func NewExporter(driver neo4j.DriverWithContext) *Exporter {
	return &Exporter{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (ex *Exporter) EnsureSchema(ctx context.Context) error {
	session := ex.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:StringTable) REQUIRE t.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Category) REQUIRE c.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (l:Language) REQUIRE l.code IS UNIQUE",
		"CREATE INDEX IF NOT EXISTS FOR (l:Label) ON (l.table, l.name)",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// ExportTable replaces the graph of table with nodes.
func (ex *Exporter) ExportTable(ctx context.Context, table string, nodes []LabelNode) error {
	session := ex.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (t:StringTable {name: $table})
		WITH t
		OPTIONAL MATCH (t)-[:HAS_LABEL]->(old:Label)
		DETACH DELETE old
	`, map[string]any{"table": table})
	if err != nil {
		return fmt.Errorf("reset table %s: %w", table, err)
	}

	failed := 0
	for _, n := range nodes {
		if err := ex.exportLabel(ctx, session, table, n); err != nil {
			log.Warn().Err(err).Str("label", n.Label).Msg("Failed to export label")
			failed++
		}
	}

	log.Info().
		Str("table", table).
		Int("labels", len(nodes)-failed).
		Int("failed", failed).
		Msg("Exported string table graph")
	return nil
}

func (ex *Exporter) exportLabel(ctx context.Context, session neo4j.SessionWithContext, table string, n LabelNode) error {
	_, err := session.Run(ctx, `
		MATCH (t:StringTable {name: $table})
		CREATE (t)-[:HAS_LABEL]->(l:Label {name: $label, table: $table})
	`, map[string]any{"table": table, "label": n.Label})
	if err != nil {
		return fmt.Errorf("create label: %w", err)
	}

	if n.Category != "" {
		_, err = session.Run(ctx, `
			MATCH (l:Label {table: $table, name: $label})
			MERGE (c:Category {name: $category})
			MERGE (l)-[:IN_CATEGORY]->(c)
		`, map[string]any{"table": table, "label": n.Label, "category": n.Category})
		if err != nil {
			return fmt.Errorf("link category: %w", err)
		}
	}

	for _, tr := range n.Translations {
		_, err = session.Run(ctx, `
			MATCH (l:Label {table: $table, name: $label})
			MERGE (lang:Language {code: $code})
			SET lang.name = $name
			MERGE (l)-[r:TRANSLATION]->(lang)
			SET r.text = $text, r.speech = $speech
		`, map[string]any{
			"table":  table,
			"label":  n.Label,
			"code":   tr.Code,
			"name":   tr.Name,
			"text":   tr.Text,
			"speech": tr.Speech,
		})
		if err != nil {
			return fmt.Errorf("link translation %s: %w", tr.Code, err)
		}
	}
	return nil
}
