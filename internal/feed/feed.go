// Package feed assembles the two equivalent output views of the episode set:
// a flat JSON-ready listing and a podcast-client-compatible RSS document.
// Both are built fresh per request from the same ordering and identity rules.
package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"podcast-archive/internal/config"
	"podcast-archive/internal/models"
)

const guidPrefix = "urn:podcastarchive:"

// Assembler turns resolved episodes plus channel configuration into feed
// output.
type Assembler struct {
	settings *config.Settings
	images   *ImageResolver
}

func NewAssembler(settings *config.Settings, images *ImageResolver) *Assembler {
	return &Assembler{settings: settings, images: images}
}

// ListingItem is one record of the JSON listing view.
type ListingItem struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Year        *int   `json:"year"`
}

// BuildListing maps episodes one-to-one into listing records, adding the
// computed playback URL. Ordering matches the RSS feed: newest year first,
// episodes without a year last, filename tie-break.
func (a *Assembler) BuildListing(episodes []models.Episode) []ListingItem {
	baseURL := a.settings.NormalizedBaseURL()

	items := make([]ListingItem, 0, len(episodes))
	for _, episode := range sortEpisodes(episodes) {
		items = append(items, ListingItem{
			Name:        episode.Filename,
			URL:         playbackURL(baseURL, episode.Filename),
			Title:       episode.Title,
			Artist:      episode.Artist,
			Album:       episode.Album,
			Duration:    episode.DurationText,
			Description: episode.Description,
			Year:        episode.Year,
		})
	}
	return items
}

// sortEpisodes orders by year descending with absent years last, then by
// case-insensitive filename ascending. The sort is stable so identical input
// sets always produce identical output order.
func sortEpisodes(episodes []models.Episode) []models.Episode {
	sorted := make([]models.Episode, len(episodes))
	copy(sorted, episodes)

	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := sorted[i].Year, sorted[j].Year
		switch {
		case yi != nil && yj == nil:
			return true
		case yi == nil && yj != nil:
			return false
		case yi != nil && yj != nil && *yi != *yj:
			return *yi > *yj
		}
		return strings.ToLower(sorted[i].Filename) < strings.ToLower(sorted[j].Filename)
	})
	return sorted
}

// stableGUID derives the episode identity from the lowercased, trimmed
// filename alone. Hashing keeps the identifier opaque and safe for filenames
// with spaces or special characters, and leaves it independent of the
// deployment host: changing base_url never makes clients re-download
// episodes as new.
func stableGUID(filename string) string {
	normalized := strings.ToLower(strings.TrimSpace(filename))
	digest := sha256.Sum256([]byte(normalized))
	return guidPrefix + hex.EncodeToString(digest[:])
}

func playbackURL(baseURL, filename string) string {
	return baseURL + "/file/" + url.PathEscape(filename)
}

func imageURL(baseURL, basePath, filename string) string {
	return baseURL + basePath + "/" + url.PathEscape(filename)
}
