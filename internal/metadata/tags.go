package metadata

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// accessor wraps a tag container behind "first value for key" lookups. The
// container may be nil (file with no tags), and every lookup is isolated: a
// panic while decoding one malformed frame makes that key absent without
// aborting the fallback chain it belongs to.
type accessor struct {
	meta tag.Metadata
}

func (a accessor) title() (string, bool)  { return a.lookup(func() string { return a.meta.Title() }) }
func (a accessor) artist() (string, bool) { return a.lookup(func() string { return a.meta.Artist() }) }
func (a accessor) album() (string, bool)  { return a.lookup(func() string { return a.meta.Album() }) }
func (a accessor) lyrics() (string, bool) { return a.lookup(func() string { return a.meta.Lyrics() }) }

func (a accessor) comment() (string, bool) {
	return a.lookup(func() string { return a.meta.Comment() })
}

func (a accessor) composer() (string, bool) {
	return a.lookup(func() string { return a.meta.Composer() })
}

// yearText exposes the tag library's semantic year as text so it can run
// through the same date parser as the raw frames.
func (a accessor) yearText() (string, bool) {
	return a.lookup(func() string {
		if year := a.meta.Year(); year != 0 {
			return strconv.Itoa(year)
		}
		return ""
	})
}

// raw returns the text of a raw frame id, matched case-insensitively so the
// same chain covers ID3 frame ids and lowercase vorbis comment names. When
// several stored ids match, the lexicographically smallest wins to keep
// resolution deterministic across runs.
func (a accessor) raw(key string) (string, bool) {
	return a.lookup(func() string {
		var ids []string
		for id := range a.meta.Raw() {
			if strings.EqualFold(id, key) {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)

		for _, id := range ids {
			if text := frameText(a.meta.Raw()[id]); text != "" {
				return text
			}
		}
		return ""
	})
}

func (a accessor) lookup(get func() string) (value string, ok bool) {
	if a.meta == nil {
		return "", false
	}
	defer func() {
		if recover() != nil {
			value, ok = "", false
		}
	}()
	value = strings.TrimSpace(get())
	return value, value != ""
}

// frameText extracts readable text from a raw frame value. Frames holding
// non-text payloads (pictures, binary blobs) are simply not usable here.
func frameText(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case *tag.Comm:
		if v != nil {
			return v.Text
		}
	}
	return ""
}
