package storage

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// IndexEntry is one row of the run index.
type IndexEntry struct {
	ID              string    `db:"id" json:"id"`
	Workshop        string    `db:"workshop" json:"workshop"`
	Fluid           string    `db:"fluid" json:"fluid"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	Duration        float64   `db:"duration" json:"duration"`
	BoilTime        float64   `db:"boil_time" json:"boil_time"`
	PeakTemperature float64   `db:"peak_temperature" json:"peak_temperature"`
	Vaporized       float64   `db:"vaporized" json:"vaporized"`
	Samples         int       `db:"samples" json:"samples"`
}

// Index is a SQLite table of saved runs, so listing does not have to read
// every metadata file.
type Index struct {
	conn *sqlx.DB
}

// indexPragmas are applied by the driver to every new connection.
const indexPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

func OpenIndex(path string) (*Index, error) {
	conn, err := sqlx.Open("sqlite", path+indexPragmas)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	idx := &Index{conn: conn}
	if err := idx.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return idx, nil
}

func (idx *Index) Close() error {
	return idx.conn.Close()
}

func (idx *Index) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		workshop TEXT NOT NULL,
		fluid TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		duration REAL NOT NULL,
		boil_time REAL NOT NULL,
		peak_temperature REAL NOT NULL,
		vaporized REAL NOT NULL,
		samples INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_workshop ON runs(workshop);
	`
	_, err := idx.conn.Exec(schema)
	return err
}

func (idx *Index) Add(e IndexEntry) error {
	_, err := idx.conn.NamedExec(`INSERT OR REPLACE INTO runs
		(id, workshop, fluid, created_at, duration, boil_time, peak_temperature, vaporized, samples)
		VALUES (:id, :workshop, :fluid, :created_at, :duration, :boil_time, :peak_temperature, :vaporized, :samples)`, e)
	return err
}

// List returns runs newest first, optionally only those of one workshop.
func (idx *Index) List(workshop string) ([]IndexEntry, error) {
	entries := []IndexEntry{}
	var err error
	if workshop == "" {
		err = idx.conn.Select(&entries, `SELECT * FROM runs ORDER BY created_at DESC`)
	} else {
		err = idx.conn.Select(&entries, `SELECT * FROM runs WHERE workshop = ? ORDER BY created_at DESC`, workshop)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (idx *Index) Get(id string) (*IndexEntry, error) {
	var e IndexEntry
	if err := idx.conn.Get(&e, `SELECT * FROM runs WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (idx *Index) Remove(id string) error {
	_, err := idx.conn.Exec(`DELETE FROM runs WHERE id = ?`, id)
	return err
}
