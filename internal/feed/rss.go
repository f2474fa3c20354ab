package feed

import (
	"encoding/xml"
	"regexp"
	"time"

	"github.com/pkg/errors"

	"podcast-archive/internal/models"
)

const (
	itunesNamespace     = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	dublinCoreNamespace = "http://purl.org/dc/elements/1.1/"
	enclosureMediaType  = "audio/mpeg"
)

// BuildFeed renders the full RSS 2.0 document. A serialization failure is
// fatal for the request and propagates; no partial output is attempted.
func (a *Assembler) BuildFeed(episodes []models.Episode) ([]byte, error) {
	baseURL := a.settings.NormalizedBaseURL()

	channel := rssChannel{
		Title:          a.settings.EffectiveChannelTitle(),
		Link:           a.settings.NormalizedChannelLink(),
		Description:    a.settings.EffectiveChannelDescription(),
		LastBuildDate:  time.Now().UTC().Format(time.RFC1123Z),
		Generator:      "podcast-archive",
		ITunesAuthor:   a.settings.EffectiveChannelAuthor(),
		ITunesExplicit: explicitValue(a.settings.Channel.Explicit),
		ITunesSummary:  a.settings.EffectiveChannelDescription(),
		ITunesOwner: &rssOwner{
			Name:  a.settings.EffectiveOwnerName(),
			Email: a.settings.EffectiveOwnerEmail(),
		},
	}
	if href, ok := a.settings.ChannelImageURL(); ok {
		channel.ITunesImage = &rssImage{Href: href}
	}

	for _, episode := range sortEpisodes(episodes) {
		channel.Items = append(channel.Items, a.buildItem(episode, baseURL))
	}

	doc := rssDocument{
		Version:  "2.0",
		ITunesNS: itunesNamespace,
		DCNS:     dublinCoreNamespace,
		Channel:  channel,
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal rss document")
	}

	output = stripEmptyKeywords(output)
	return append([]byte(xml.Header), output...), nil
}

func (a *Assembler) buildItem(episode models.Episode, baseURL string) rssItem {
	length := episode.FileSizeBytes
	if length < 0 {
		length = 0
	}

	item := rssItem{
		Title:       episode.Title,
		Description: episode.Description,
		Author:      episode.Artist,
		GUID:        rssGUID{IsPermaLink: "false", Value: stableGUID(episode.Filename)},
		Enclosure: rssEnclosure{
			URL:    playbackURL(baseURL, episode.Filename),
			Type:   enclosureMediaType,
			Length: length,
		},
		ITunesAuthor:   episode.Artist,
		ITunesTitle:    episode.Title,
		ITunesSubtitle: episode.Album,
		ITunesSummary:  episode.Description,
		ITunesExplicit: explicitValue(a.settings.Channel.Explicit),
		ITunesDuration: episode.DurationText,
	}

	// pubDate demands full precision; dc:date carries whatever precision the
	// tags actually had, down to a bare year. The two are independent.
	if parts := episode.PublishedAt; parts != nil {
		if instant, ok := parts.Instant(); ok {
			item.PubDate = instant.UTC().Format(time.RFC1123Z)
		}
		item.DCDate = parts.IsoPartial()
	}

	if imageName, ok := a.images.Resolve(episode.Filename); ok {
		href := imageURL(baseURL, a.settings.NormalizedImageBasePath(), imageName)
		item.ITunesImage = &rssImage{Href: href}
	}
	return item
}

func explicitValue(explicit bool) string {
	if explicit {
		return "yes"
	}
	return "no"
}

// emptyKeywordsPattern matches itunes:keywords tags with no content,
// including surrounding indentation.
var emptyKeywordsPattern = regexp.MustCompile(`\s*<itunes:keywords\s*/>|\s*<itunes:keywords></itunes:keywords>`)

// stripEmptyKeywords removes keywords tags that rendered empty or
// self-closing. A keywords tag carrying real content is left untouched.
func stripEmptyKeywords(output []byte) []byte {
	return emptyKeywordsPattern.ReplaceAll(output, nil)
}

type rssDocument struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	DCNS     string     `xml:"xmlns:dc,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string    `xml:"title"`
	Link           string    `xml:"link"`
	Description    string    `xml:"description"`
	LastBuildDate  string    `xml:"lastBuildDate"`
	Generator      string    `xml:"generator"`
	ITunesAuthor   string    `xml:"itunes:author"`
	ITunesExplicit string    `xml:"itunes:explicit"`
	ITunesSummary  string    `xml:"itunes:summary"`
	ITunesKeywords string    `xml:"itunes:keywords"`
	ITunesOwner    *rssOwner `xml:"itunes:owner"`
	ITunesImage    *rssImage `xml:"itunes:image"`
	Items          []rssItem `xml:"item"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	Author         string       `xml:"author"`
	GUID           rssGUID      `xml:"guid"`
	PubDate        string       `xml:"pubDate,omitempty"`
	DCDate         string       `xml:"dc:date,omitempty"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	ITunesAuthor   string       `xml:"itunes:author"`
	ITunesTitle    string       `xml:"itunes:title"`
	ITunesSubtitle string       `xml:"itunes:subtitle"`
	ITunesSummary  string       `xml:"itunes:summary"`
	ITunesExplicit string       `xml:"itunes:explicit"`
	ITunesDuration string       `xml:"itunes:duration"`
	ITunesKeywords string       `xml:"itunes:keywords"`
	ITunesImage    *rssImage    `xml:"itunes:image"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssOwner struct {
	Name  string `xml:"itunes:name"`
	Email string `xml:"itunes:email"`
}

type rssImage struct {
	Href string `xml:"href,attr"`
}
