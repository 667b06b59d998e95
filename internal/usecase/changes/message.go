package changes

import (
	"fmt"
	"strings"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
)

// Noun holds the German singular and plural forms used in change messages,
// e.g. {"Track", "Tracks"} or {"Release", "Releases"}.
type Noun struct {
	Singular string
	Plural   string
}

// FormatDelta renders a delta as a German notification body.
// Counts of one use the singular verb form ("1 Track wurde hinzugefügt"),
// everything else the plural ("3 Tracks wurden entfernt"). Added and
// removed parts are joined with " – ". Empty deltas yield the empty string.
func FormatDelta(delta entity.Delta, noun Noun) string {
	parts := make([]string, 0, 2)
	if n := len(delta.Added); n > 0 {
		parts = append(parts, countPhrase(n, noun, "hinzugefügt"))
	}
	if n := len(delta.Removed); n > 0 {
		parts = append(parts, countPhrase(n, noun, "entfernt"))
	}
	return strings.Join(parts, " – ")
}

func countPhrase(n int, noun Noun, verb string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s wurde %s", noun.Singular, verb)
	}
	return fmt.Sprintf("%d %s wurden %s", n, noun.Plural, verb)
}
