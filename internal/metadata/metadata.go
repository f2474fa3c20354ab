// Package metadata resolves one normalized Episode per audio file. Tags are
// optional and inconsistently named across tagging tools, so every
// descriptive field is produced by a fallback chain over the tag container,
// and a failure on one file or one key never disturbs the rest.
package metadata

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"
	"github.com/tcolgate/mp3"

	"podcast-archive/internal/dateparts"
	"podcast-archive/internal/models"
)

const (
	unknownArtist = "Unknown"
	defaultAlbum  = "Podcast Archive"
)

// descriptionRawKeys are raw frame ids checked after the semantic
// comment/lyrics/composer accessors. Different tools stash description-like
// text under any of these.
var descriptionRawKeys = []string{"COMM", "COMMENT", "DESCRIPTION", "DESC", "REMARK", "REMARKS"}

// dateRawKeys cover the date/year conventions of ID3v2.3, ID3v2.4 and vorbis
// comments. Raw frames are scanned before the tag library's semantic Year()
// accessor because Year() collapses frame text like "2020-07-18T14:30" to a
// bare integer, destroying the sub-year precision this package exists to
// preserve. The first key whose value parses wins outright; fields are never
// merged across keys.
var dateRawKeys = []string{"TDRC", "TDOR", "TDRL", "TYER", "TORY", "DATE", "YEAR", "ORIGINALYEAR"}

// Resolver builds Episode records from audio files on disk.
type Resolver struct {
	logger *slog.Logger
}

func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// ResolveAll resolves every path it can and silently drops the rest. A
// corrupt file is logged and excluded; it never aborts the batch.
func (r *Resolver) ResolveAll(paths []string) []models.Episode {
	episodes := make([]models.Episode, 0, len(paths))
	for _, path := range paths {
		episode, err := r.Resolve(path)
		if err != nil {
			r.logger.Warn("skipping unreadable audio file",
				"file", filepath.Base(path), "error", err)
			continue
		}
		episodes = append(episodes, episode)
	}
	return episodes
}

// Resolve reads one file's tags and assembles the normalized Episode. An
// error is returned only for total unreadability (I/O failure or a malformed
// tag container); a file with no tags at all still resolves via fallbacks.
func (r *Resolver) Resolve(path string) (models.Episode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Episode{}, errors.Wrap(err, "stat audio file")
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Episode{}, errors.Wrap(err, "open audio file")
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil && !errors.Is(err, tag.ErrNoTagsFound) {
		return models.Episode{}, errors.Wrap(err, "read tag container")
	}
	acc := accessor{meta: meta}

	filename := filepath.Base(path)
	title, ok := acc.title()
	if !ok {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	artist, ok := acc.artist()
	if !ok {
		artist = unknownArtist
	}
	album, ok := acc.album()
	if !ok {
		album = defaultAlbum
	}

	episode := models.Episode{
		Filename:      filename,
		Title:         title,
		Artist:        artist,
		Album:         album,
		Description:   r.resolveDescription(acc),
		FileSizeBytes: info.Size(),
	}

	if parts, ok := r.resolvePublishedAt(acc); ok {
		year := parts.Year
		episode.PublishedAt = &parts
		episode.Year = &year
	}

	episode.DurationSeconds = r.resolveDuration(path)
	episode.DurationText = formatDuration(episode.DurationSeconds)

	return episode, nil
}

// resolveDescription walks the semantic chain (comment, lyrics, composer)
// and then the raw frame ids; the first non-blank trimmed value wins and the
// default is the empty string, never nil.
func (r *Resolver) resolveDescription(acc accessor) string {
	lookups := []func() (string, bool){acc.comment, acc.lyrics, acc.composer}
	for _, lookup := range lookups {
		if value, ok := lookup(); ok {
			return value
		}
	}
	for _, key := range descriptionRawKeys {
		if value, ok := acc.raw(key); ok {
			return value
		}
	}
	return ""
}

// resolvePublishedAt scans the date chain once; the first value that parses
// supplies both the published-at parts and the derived year.
func (r *Resolver) resolvePublishedAt(acc accessor) (dateparts.Parts, bool) {
	for _, key := range dateRawKeys {
		value, ok := acc.raw(key)
		if !ok {
			continue
		}
		if parts, ok := dateparts.Parse(value); ok {
			return parts, true
		}
	}
	if value, ok := acc.yearText(); ok {
		if parts, ok := dateparts.Parse(value); ok {
			return parts, true
		}
	}
	return dateparts.Parts{}, false
}

// resolveDuration sums mp3 frame durations the way the audio header reports
// them. Files that cannot be decoded simply report zero; duration is
// best-effort and never fails resolution.
func (r *Resolver) resolveDuration(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if !errors.Is(err, io.EOF) {
				return 0
			}
			break
		}
		total += frame.Duration().Seconds()
	}

	if total <= 0 {
		return 0
	}
	return int(total + 0.5)
}

// formatDuration renders zero-padded HH:MM:SS; zero or negative input is
// "00:00:00".
func formatDuration(totalSeconds int) string {
	if totalSeconds <= 0 {
		return "00:00:00"
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
