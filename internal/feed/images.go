package feed

import (
	"os"
	"sort"
	"strings"
)

// ImageResolver matches episode artwork by base filename in the configured
// image directory: episode-2.mp3 pairs with episode-2.webp, episode-2.jpg or
// any other extension sharing the base name. The directory is read fresh on
// every call.
type ImageResolver struct {
	dir string
}

func NewImageResolver(dir string) *ImageResolver {
	return &ImageResolver{dir: dir}
}

// Resolve returns the matched image filename (including extension) for an
// episode filename. Matching is case-insensitive and extension-agnostic;
// when several candidates share the base name the case-insensitive sort
// makes the first pick deterministic. A missing directory or no match is
// simply absent, never an error.
func (r *ImageResolver) Resolve(episodeFilename string) (string, bool) {
	base := baseName(episodeFilename)
	if base == "" {
		return "", false
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", false
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for _, name := range names {
		if strings.EqualFold(baseName(name), base) {
			return name, true
		}
	}
	return "", false
}

// baseName strips the extension; names like ".hidden" (dot first) keep the
// full name.
func baseName(filename string) string {
	trimmed := strings.TrimSpace(filename)
	dot := strings.LastIndex(trimmed, ".")
	if dot <= 0 {
		return trimmed
	}
	return trimmed[:dot]
}
