package converter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/james-see/notemaker/pkg/theory"
)

// Genres are the tags accepted by SuggestFilename
var Genres = []string{"DNB", "AMB", "MTE", "TFS", "TST", "PST"}

// SuggestFilename returns a base name of the form YYYY-MM-DD_GENRE using the
// UTC date of t
func SuggestFilename(genre string, t time.Time) (string, error) {
	genre = strings.ToUpper(strings.TrimSpace(genre))
	if !slices.Contains(Genres, genre) {
		return "", fmt.Errorf("%w: unknown genre %q", theory.ErrInvalidParameter, genre)
	}
	return t.UTC().Format(time.DateOnly) + "_" + genre, nil
}
