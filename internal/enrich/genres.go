package enrich

import "strings"

// genreNames maps the primary catalog's numeric genre ids to display
// names. The ids are provider-specific and stable; unknown ids map to
// "Unknown" rather than being dropped.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// GenreName resolves one genre id through the static table.
func GenreName(id int) string {
	if name, ok := genreNames[id]; ok {
		return name
	}
	return "Unknown"
}

// GenreNames resolves a list of ids, preserving order.
func GenreNames(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, GenreName(id))
	}
	return out
}

// GenreID does the reverse lookup for discover queries, ignoring case;
// 0 means unknown.
func GenreID(name string) int {
	for id, n := range genreNames {
		if strings.EqualFold(n, name) {
			return id
		}
	}
	return 0
}

// CountryNames maps ISO 3166-1 codes to the labels shown to the user.
var CountryNames = map[string]string{
	"US": "Hollywood/USA",
	"IN": "Bollywood/India",
	"GB": "United Kingdom",
	"FR": "France",
	"DE": "Germany",
	"IT": "Italy",
	"CA": "Canada",
	"JP": "Japan",
	"AU": "Australia",
	"CN": "China",
}
