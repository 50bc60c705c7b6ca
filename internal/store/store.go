package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no record exists for a natural key.
var ErrNotFound = errors.New("store: movie not found")

// Movie is the canonical persisted record, one row of the movies table
// joined with its keyword set. Nil pointers are stored NULLs.
type Movie struct {
	ID         int64
	Name       string
	Year       int
	Genre      string
	Rating     float64
	Mood       string
	IMDBRating *float64
	RTRating   *string
	Metacritic *int
	Director   string
	Actors     string
	Composer   string
	Producer   string
	Studio     string
	Plot       string
	Duration   *int
	Budget     *int64
	Revenue    *int64
	Keywords   []string
}

// UpsertParams carries one record into Upsert. Fetched fields follow
// gap-filling merge semantics; Rating and Mood are user-authored and
// always overwrite.
type UpsertParams struct {
	Name       string
	Year       int
	Genre      string
	Rating     float64
	Mood       string
	IMDBRating *float64
	RTRating   *string
	Metacritic *int
	Director   string
	Actors     string
	Composer   string
	Producer   string
	Studio     string
	Plot       string
	Duration   *int
	Budget     *int64
	Revenue    *int64
	Keywords   []string
}

// Store wraps the local SQLite database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open connects to (or creates) the database at path and ensures the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	s := &Store{db: db, log: log}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL COLLATE NOCASE,
			year INTEGER NOT NULL,
			genre TEXT,
			rating REAL,
			mood TEXT,
			imdb_rating REAL,
			rt_rating TEXT,
			metacritic_rating INTEGER,
			director TEXT,
			actors TEXT,
			composer TEXT,
			UNIQUE(name, year)
		)`,
		`CREATE TABLE IF NOT EXISTS keywords (
			id INTEGER PRIMARY KEY,
			movie_id INTEGER NOT NULL,
			keyword TEXT NOT NULL,
			FOREIGN KEY(movie_id) REFERENCES movies(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS keywords_movie_idx ON keywords (movie_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	// Columns added after the original schema shipped.
	migrations := []struct{ column, typ string }{
		{"producer", "TEXT"},
		{"studio", "TEXT"},
		{"plot", "TEXT"},
		{"duration", "INTEGER"},
		{"budget", "INTEGER"},
		{"revenue", "INTEGER"},
	}
	for _, m := range migrations {
		if err := s.addColumnIfMissing(ctx, "movies", m.column, m.typ); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) addColumnIfMissing(ctx context.Context, table, column, typ string) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// Upsert inserts or updates the record identified by (name, year) and
// replaces its keyword set, in one transaction. Stored non-null values
// survive null incoming ones; fresh non-null values always win; rating
// and mood always overwrite. Rolls back on any error.
func (s *Store) Upsert(ctx context.Context, p UpsertParams) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("store: movie name required")
	}
	if p.Year <= 0 {
		return errors.New("store: release year required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var movieID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO movies (name, year, genre, rating, mood, imdb_rating, rt_rating, metacritic_rating,
			director, actors, composer, producer, studio, plot, duration, budget, revenue)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, year) DO UPDATE SET
			genre = COALESCE(excluded.genre, movies.genre),
			rating = excluded.rating,
			mood = excluded.mood,
			imdb_rating = COALESCE(excluded.imdb_rating, movies.imdb_rating),
			rt_rating = COALESCE(excluded.rt_rating, movies.rt_rating),
			metacritic_rating = COALESCE(excluded.metacritic_rating, movies.metacritic_rating),
			director = COALESCE(excluded.director, movies.director),
			actors = COALESCE(excluded.actors, movies.actors),
			composer = COALESCE(excluded.composer, movies.composer),
			producer = COALESCE(excluded.producer, movies.producer),
			studio = COALESCE(excluded.studio, movies.studio),
			plot = COALESCE(excluded.plot, movies.plot),
			duration = COALESCE(excluded.duration, movies.duration),
			budget = COALESCE(excluded.budget, movies.budget),
			revenue = COALESCE(excluded.revenue, movies.revenue)
		RETURNING id`,
		p.Name, p.Year,
		nullString(p.Genre), p.Rating, p.Mood,
		p.IMDBRating, p.RTRating, p.Metacritic,
		nullString(p.Director), nullString(p.Actors), nullString(p.Composer),
		nullString(p.Producer), nullString(p.Studio), nullString(p.Plot),
		p.Duration, p.Budget, p.Revenue,
	).Scan(&movieID)
	if err != nil {
		return fmt.Errorf("upsert movie %q (%d): %w", p.Name, p.Year, err)
	}

	// Full keyword replacement, never an incremental merge.
	if _, err := tx.ExecContext(ctx, `DELETE FROM keywords WHERE movie_id = ?`, movieID); err != nil {
		return fmt.Errorf("clear keywords for %q (%d): %w", p.Name, p.Year, err)
	}
	for _, kw := range p.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO keywords (movie_id, keyword) VALUES (?, ?)`, movieID, kw); err != nil {
			return fmt.Errorf("insert keyword %q for %q (%d): %w", kw, p.Name, p.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert for %q (%d): %w", p.Name, p.Year, err)
	}
	s.log.Debug().Str("name", p.Name).Int("year", p.Year).Int("keywords", len(p.Keywords)).Msg("movie upserted")
	return nil
}

const movieColumns = `m.id, m.name, m.year, m.genre, m.rating, m.mood,
	m.imdb_rating, m.rt_rating, m.metacritic_rating,
	m.director, m.actors, m.composer, m.producer, m.studio, m.plot,
	m.duration, m.budget, m.revenue,
	GROUP_CONCAT(k.keyword, ', ') AS keywords`

// GetByKey looks up one record by its natural key. Lookup is case and
// whitespace insensitive; the stored form is returned as given.
func (s *Store) GetByKey(ctx context.Context, name string, year int) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies m
		LEFT JOIN keywords k ON m.id = k.movie_id
		WHERE m.name = ? AND m.year = ?
		GROUP BY m.id`,
		strings.TrimSpace(name), year)
	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get movie %q (%d): %w", name, year, err)
	}
	return m, nil
}

// List returns the whole collection, keywords concatenated per record.
func (s *Store) List(ctx context.Context) ([]Movie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies m
		LEFT JOIN keywords k ON m.id = k.movie_id
		GROUP BY m.id
		ORDER BY m.name, m.year`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()
	return collectMovies(rows)
}

// Filter restricts Search. Zero values are ignored.
type Filter struct {
	Name      string
	MinYear   int
	MaxYear   int
	Genre     string
	Mood      string
	MinRating float64
	Director  string
	Actor     string
	Keyword   string
}

// Search returns records matching every set filter, substring matched
// case-insensitively as the interactive search does.
func (s *Store) Search(ctx context.Context, f Filter) ([]Movie, error) {
	query := `
		SELECT ` + movieColumns + `
		FROM movies m
		LEFT JOIN keywords k ON m.id = k.movie_id
		WHERE 1=1`
	var args []any
	like := func(clause, value string) {
		query += clause
		args = append(args, "%"+value+"%")
	}
	if f.Name != "" {
		like(" AND LOWER(m.name) LIKE LOWER(?)", f.Name)
	}
	if f.MinYear > 0 {
		query += " AND m.year >= ?"
		args = append(args, f.MinYear)
	}
	if f.MaxYear > 0 {
		query += " AND m.year <= ?"
		args = append(args, f.MaxYear)
	}
	if f.Genre != "" {
		like(" AND LOWER(m.genre) LIKE LOWER(?)", f.Genre)
	}
	if f.Mood != "" {
		like(" AND LOWER(m.mood) LIKE LOWER(?)", f.Mood)
	}
	if f.MinRating > 0 {
		query += " AND m.rating >= ?"
		args = append(args, f.MinRating)
	}
	if f.Director != "" {
		like(" AND LOWER(m.director) LIKE LOWER(?)", f.Director)
	}
	if f.Actor != "" {
		like(" AND LOWER(m.actors) LIKE LOWER(?)", f.Actor)
	}
	if f.Keyword != "" {
		like(" AND LOWER(k.keyword) LIKE LOWER(?)", f.Keyword)
	}
	query += " GROUP BY m.id ORDER BY m.name, m.year"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	defer rows.Close()
	return collectMovies(rows)
}

// RatingComparison pairs the personal rating with the IMDb one for
// records that have both.
type RatingComparison struct {
	Name       string
	Year       int
	MyRating   float64
	IMDBRating float64
	RTRating   *string
	Metacritic *int
	DiffIMDB   float64
}

// CompareRatings lists rated movies ordered by how far the personal
// rating diverges from IMDb's.
func (s *Store) CompareRatings(ctx context.Context) ([]RatingComparison, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, year, rating, imdb_rating, rt_rating, metacritic_rating,
		       (rating - imdb_rating) AS diff_imdb
		FROM movies
		WHERE imdb_rating IS NOT NULL
		ORDER BY ABS(rating - imdb_rating) DESC`)
	if err != nil {
		return nil, fmt.Errorf("compare ratings: %w", err)
	}
	defer rows.Close()
	var out []RatingComparison
	for rows.Next() {
		var c RatingComparison
		if err := rows.Scan(&c.Name, &c.Year, &c.MyRating, &c.IMDBRating, &c.RTRating, &c.Metacritic, &c.DiffIMDB); err != nil {
			return nil, fmt.Errorf("compare ratings: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a record and, via cascade, its keywords. Deletion is an
// explicit user action only.
func (s *Store) Delete(ctx context.Context, name string, year int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE name = ? AND year = ?`,
		strings.TrimSpace(name), year)
	if err != nil {
		return fmt.Errorf("delete movie %q (%d): %w", name, year, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SplitKeywords splits a comma-separated keyword string, trimming each
// entry and discarding empties.
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*Movie, error) {
	var (
		m        Movie
		genre    sql.NullString
		mood     sql.NullString
		director sql.NullString
		actors   sql.NullString
		composer sql.NullString
		producer sql.NullString
		studio   sql.NullString
		plot     sql.NullString
		keywords sql.NullString
	)
	err := row.Scan(&m.ID, &m.Name, &m.Year, &genre, &m.Rating, &mood,
		&m.IMDBRating, &m.RTRating, &m.Metacritic,
		&director, &actors, &composer, &producer, &studio, &plot,
		&m.Duration, &m.Budget, &m.Revenue, &keywords)
	if err != nil {
		return nil, err
	}
	m.Genre = genre.String
	m.Mood = mood.String
	m.Director = director.String
	m.Actors = actors.String
	m.Composer = composer.String
	m.Producer = producer.String
	m.Studio = studio.String
	m.Plot = plot.String
	if keywords.Valid && keywords.String != "" {
		m.Keywords = SplitKeywords(keywords.String)
	}
	return &m, nil
}

func collectMovies(rows *sql.Rows) ([]Movie, error) {
	var out []Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func nullString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
