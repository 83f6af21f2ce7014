package backend

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matzehuels/kintree/pkg/family"
)

// Person nodes carry their ordered link lists as properties so Load can
// rebuild the exact saved order; PARENT_OF relationships mirror them for
// graph queries.
const (
	neo4jClearQuery = `MATCH (p:Person) DETACH DELETE p`

	neo4jCreateQuery = `
		UNWIND $people AS row
		CREATE (p:Person)
		SET p = row`

	neo4jLinkQuery = `
		MATCH (p:Person)
		UNWIND p.children AS childID
		MATCH (c:Person {id: childID})
		CREATE (p)-[:PARENT_OF]->(c)`

	neo4jLoadQuery = `
		MATCH (p:Person)
		RETURN p {.*} AS props
		ORDER BY p.ord`
)

// Neo4jBackend stores people as Person nodes in a Neo4j database.
type Neo4jBackend struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jBackend connects with basic auth and verifies connectivity.
func NewNeo4jBackend(ctx context.Context, uri, user, password, database string) (*Neo4jBackend, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect neo4j %s: %w", uri, err)
	}
	return &Neo4jBackend{driver: driver, database: database}, nil
}

// Load reads every Person node in stored order.
func (b *Neo4jBackend) Load(ctx context.Context) ([]family.Person, error) {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: b.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, neo4jLoadQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}

	var people []family.Person
	for result.Next(ctx) {
		val, ok := result.Record().Get("props")
		if !ok {
			continue
		}
		props, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected node value %T", val)
		}
		people = append(people, personFromProps(props))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read people: %w", err)
	}
	return people, nil
}

// Save replaces every Person node in one write transaction.
func (b *Neo4jBackend) Save(ctx context.Context, people []family.Person) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: b.database,
	})
	defer session.Close(ctx)

	rows := make([]any, len(people))
	for i, p := range people {
		rows[i] = personProps(p, i)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, neo4jClearQuery, nil); err != nil {
			return nil, fmt.Errorf("clear people: %w", err)
		}
		if len(rows) == 0 {
			return nil, nil
		}
		if _, err := tx.Run(ctx, neo4jCreateQuery, map[string]any{"people": rows}); err != nil {
			return nil, fmt.Errorf("create people: %w", err)
		}
		if _, err := tx.Run(ctx, neo4jLinkQuery, nil); err != nil {
			return nil, fmt.Errorf("link people: %w", err)
		}
		return nil, nil
	})
	return err
}

// Close closes the driver.
func (b *Neo4jBackend) Close() error {
	return b.driver.Close(context.Background())
}

var _ family.Backend = (*Neo4jBackend)(nil)

// ============================================================================
// Property Conversion
// ============================================================================

// personProps flattens p into node properties. Neo4j has no null
// properties, so unset optionals are left out.
func personProps(p family.Person, ord int) map[string]any {
	props := map[string]any{
		"id":       int64(p.ID),
		"ord":      int64(ord),
		"name":     p.Name,
		"parents":  int64s(p.Parents),
		"children": int64s(p.Children),
	}
	if p.BirthDate != nil {
		props["birth_date"] = *p.BirthDate
	}
	if p.Description != nil {
		props["description"] = *p.Description
	}
	if p.Position != nil {
		props["x"] = p.Position.X
		props["y"] = p.Position.Y
	}
	return props
}

func personFromProps(props map[string]any) family.Person {
	p := family.Person{
		ID:       propInt(props, "id"),
		Name:     propString(props, "name"),
		Parents:  propInts(props, "parents"),
		Children: propInts(props, "children"),
	}
	if s, ok := props["birth_date"].(string); ok {
		p.BirthDate = &s
	}
	if s, ok := props["description"].(string); ok {
		p.Description = &s
	}
	x, okX := propFloat(props, "x")
	y, okY := propFloat(props, "y")
	if okX && okY {
		p.Position = &family.Position{X: x, Y: y}
	}
	return p
}

func int64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func propString(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func propInt(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func propFloat(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func propInts(props map[string]any, key string) []int {
	out := []int{}
	switch v := props[key].(type) {
	case []any:
		for _, item := range v {
			switch n := item.(type) {
			case int64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			}
		}
	case []int64:
		for _, n := range v {
			out = append(out, int(n))
		}
	}
	return out
}
