package api

import (
	"fmt"
	"strings"

	"github.com/gtplayer-cli/gtplayer/log"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
)

// normalizedName returns a lowercased, trimmed string for consistent comparison.
func normalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindClosestArtist searches the API for the given name and returns the
// result closest to it. Used by the setup flow so a typo still lands on the
// intended artist.
func FindClosestArtist(name string) (string, error) {
	name = normalizedName(name)

	artists, err := SearchArtists(name)
	if err != nil {
		log.Error(err)
		return "", err
	}

	if len(artists) == 0 {
		err = fmt.Errorf("no artists found for %s", name)
		log.Error(err)
		return "", err
	}

	// Apply Levenshtein distance to identify the most relevant match.
	closest := lo.MinBy(artists, func(a, b string) bool {
		return levenshtein.Distance(
			name,
			normalizedName(a),
		) < levenshtein.Distance(
			name,
			normalizedName(b),
		)
	})

	log.Info("Found closest artist match: " + closest)
	return closest, nil
}
