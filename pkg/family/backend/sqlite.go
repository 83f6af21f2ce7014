package backend

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/matzehuels/kintree/pkg/family"
)

// sqliteSchema stores people in insertion order and every link set
// separately, so data round-trips exactly as it was saved.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS people (
    id          INTEGER PRIMARY KEY,
    ord         INTEGER NOT NULL,
    name        TEXT NOT NULL,
    birth_date  TEXT NULL,
    description TEXT NULL,
    x           REAL NULL,
    y           REAL NULL
);

CREATE TABLE IF NOT EXISTS links (
    person_id INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    kind      TEXT NOT NULL CHECK(kind IN ('parent', 'child')),
    ref_id    INTEGER NOT NULL,
    ord       INTEGER NOT NULL,
    PRIMARY KEY (person_id, kind, ref_id)
);

CREATE INDEX IF NOT EXISTS idx_people_ord ON people(ord);
`

const (
	linkParent = "parent"
	linkChild  = "child"
)

// SQLiteBackend stores people in an embedded SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Load reads every person and link. An empty database yields nil.
func (b *SQLiteBackend) Load(ctx context.Context) ([]family.Person, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, name, birth_date, description, x, y FROM people ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []family.Person
	index := make(map[int]int)
	for rows.Next() {
		var (
			p          family.Person
			birth, dsc sql.NullString
			x, y       sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.Name, &birth, &dsc, &x, &y); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		if birth.Valid {
			p.BirthDate = family.Opt(birth.String)
		}
		if dsc.Valid {
			p.Description = family.Opt(dsc.String)
		}
		if x.Valid && y.Valid {
			p.Position = &family.Position{X: x.Float64, Y: y.Float64}
		}
		p.Parents, p.Children = []int{}, []int{}
		index[p.ID] = len(people)
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}

	links, err := b.db.QueryContext(ctx,
		`SELECT person_id, kind, ref_id FROM links ORDER BY person_id, kind, ord`)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var (
			personID, ref int
			kind          string
		)
		if err := links.Scan(&personID, &kind, &ref); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		i, ok := index[personID]
		if !ok {
			continue
		}
		if kind == linkParent {
			people[i].Parents = append(people[i].Parents, ref)
		} else {
			people[i].Children = append(people[i].Children, ref)
		}
	}
	if err := links.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return people, nil
}

// Save rewrites both tables in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, people []family.Person) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM links`); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM people`); err != nil {
		return fmt.Errorf("clear people: %w", err)
	}

	for ord, p := range people {
		var x, y sql.NullFloat64
		if p.Position != nil {
			x = sql.NullFloat64{Float64: p.Position.X, Valid: true}
			y = sql.NullFloat64{Float64: p.Position.Y, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO people (id, ord, name, birth_date, description, x, y) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, ord, p.Name, p.BirthDate, p.Description, x, y,
		)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
		if err := insertLinks(ctx, tx, p.ID, linkParent, p.Parents); err != nil {
			return err
		}
		if err := insertLinks(ctx, tx, p.ID, linkChild, p.Children); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, personID int, kind string, refs []int) error {
	for ord, ref := range refs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO links (person_id, kind, ref_id, ord) VALUES (?, ?, ?, ?)`,
			personID, kind, ref, ord,
		)
		if err != nil {
			return fmt.Errorf("insert %s link %d→%d: %w", kind, personID, ref, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error { return b.db.Close() }

var _ family.Backend = (*SQLiteBackend)(nil)
