package csvfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempCSV(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "FavMovies.csv")
}

func TestAppendAndRead(t *testing.T) {
	path := tempCSV(t)

	require.NoError(t, Append(path, Entry{
		Name: "Inception", Year: 2010, Genre: "Science Fiction",
		Rating: 9, Mood: "mind-bending",
		Keywords: []string{"dream", "heist"},
	}))
	require.NoError(t, Append(path, Entry{
		Name: "Heat", Year: 1995, Genre: "Crime", Rating: 8.5, Mood: "tense",
	}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Inception", entries[0].Name)
	assert.Equal(t, 2010, entries[0].Year)
	assert.Equal(t, 9.0, entries[0].Rating)
	assert.Equal(t, []string{"dream", "heist"}, entries[0].Keywords)
	assert.Equal(t, "Heat", entries[1].Name)
	assert.Empty(t, entries[1].Keywords)
}

func TestReadSkipsMalformedRows(t *testing.T) {
	path := tempCSV(t)
	raw := "@,Movie Name,Year of Release,Genre,My rating,producer,Mood,Keywords,,,\n" +
		",Good Movie,2001,Drama,7.5,,sad,loss,,,\n" +
		",Short Row,1999\n" +
		",No Year,not-a-year,Drama,8,,calm,,,,\n" +
		",No Rating,2005,Drama,unrated,,calm,,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Good Movie", entries[0].Name)
}

func TestUpdateInPlace(t *testing.T) {
	path := tempCSV(t)
	require.NoError(t, WriteAll(path, []Entry{
		{Name: "Alien", Year: 1979, Genre: "Horror", Rating: 8.5, Mood: "dread"},
		{Name: "Aliens", Year: 1986, Genre: "Action", Rating: 8.5, Mood: "loud"},
	}))

	err := UpdateInPlace(path, "alien", 1979, Entry{
		Name: "Alien", Year: 1979, Genre: "Horror", Rating: 9.5, Mood: "dread",
		Keywords: []string{"xenomorph"},
	})
	require.NoError(t, err)

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 9.5, entries[0].Rating)
	assert.Equal(t, []string{"xenomorph"}, entries[0].Keywords)
	assert.Equal(t, "Aliens", entries[1].Name)

	err = UpdateInPlace(path, "Predator", 1987, Entry{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWritePreservesColumnLayout(t *testing.T) {
	path := tempCSV(t)
	require.NoError(t, WriteAll(path, []Entry{
		{Name: "Ran", Year: 1985, Genre: "Drama", Rating: 9, Mood: "epic",
			Keywords: []string{"samurai", "succession", "betrayal", "war"}},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "@,Movie Name,Year of Release,Genre,My rating,producer,Mood,Keywords,,,")
	assert.Contains(t, string(raw), ",Ran,1985,Drama,9,,epic,samurai,succession,betrayal,war")
}
