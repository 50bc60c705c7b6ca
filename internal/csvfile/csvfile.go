// Package csvfile reads and writes the favorites CSV, the user-authored
// source of record that the sync pipeline feeds from.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrNotFound is returned by UpdateInPlace when no row matches the key.
var ErrNotFound = errors.New("csvfile: movie not found")

// Header is the favorites file header row. The leading marker column and
// the trailing unnamed columns are part of the historical layout and are
// preserved on write.
var Header = []string{"@", "Movie Name", "Year of Release", "Genre", "My rating", "producer", "Mood", "Keywords", "", "", ""}

const maxKeywords = 4

// Entry is one favorites row. Producer is carried for layout fidelity
// only; the canonical producer list comes from external data.
type Entry struct {
	Name     string
	Year     int
	Genre    string
	Rating   float64
	Producer string
	Mood     string
	Keywords []string
}

// Read parses the favorites file at path. Malformed or short rows are
// skipped rather than failing the whole file.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open favorites file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read favorites file: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for _, row := range rows[1:] {
		e, ok := parseRow(row)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRow(row []string) (Entry, bool) {
	if len(row) < 7 {
		return Entry{}, false
	}
	name := strings.TrimSpace(row[1])
	if name == "" {
		return Entry{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return Entry{}, false
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil {
		return Entry{}, false
	}
	e := Entry{
		Name:     name,
		Year:     year,
		Genre:    strings.TrimSpace(row[3]),
		Rating:   rating,
		Producer: strings.TrimSpace(row[5]),
		Mood:     strings.TrimSpace(row[6]),
	}
	for _, kw := range row[7:] {
		if kw = strings.TrimSpace(kw); kw != "" {
			e.Keywords = append(e.Keywords, kw)
		}
	}
	return e, true
}

func toRow(e Entry) []string {
	row := []string{
		"",
		e.Name,
		strconv.Itoa(e.Year),
		e.Genre,
		formatRating(e.Rating),
		e.Producer,
		e.Mood,
	}
	for i := 0; i < maxKeywords; i++ {
		if i < len(e.Keywords) {
			row = append(row, e.Keywords[i])
		} else {
			row = append(row, "")
		}
	}
	return row
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Append adds one entry to the favorites file, creating it with a
// header when absent.
func Append(path string, e Entry) error {
	entries, err := Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	entries = append(entries, e)
	return WriteAll(path, entries)
}

// UpdateInPlace rewrites the row matching (name, year), preserving row
// order. Matching is case-insensitive on the title.
func UpdateInPlace(path string, name string, year int, updated Entry) error {
	entries, err := Read(path)
	if err != nil {
		return err
	}
	found := false
	for i, e := range entries {
		if strings.EqualFold(e.Name, name) && e.Year == year {
			entries[i] = updated
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	return WriteAll(path, entries)
}

// WriteAll replaces the favorites file with the given entries.
func WriteAll(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create favorites file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write favorites header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write(toRow(e)); err != nil {
			return fmt.Errorf("write favorites row %q: %w", e.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush favorites file: %w", err)
	}
	return nil
}
