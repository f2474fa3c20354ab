// Package config loads the immutable settings the feed pipeline consumes:
// media directory, base URL, channel metadata and artwork locations.
// Channel-facing values all have non-blank effective fallbacks so the RSS
// output stays valid no matter how sparse the configuration is.
package config

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	defaultChannelTitle       = "Podcast Archive"
	defaultChannelDescription = "Local podcast archive feed."
	defaultChannelAuthor      = "Podcast Archive"
	defaultOwnerName          = "Podcast Archive"
	defaultOwnerEmail         = "podcast@example.com"
	defaultImageBasePath      = "/images"
)

// Channel carries the channel-level feed metadata.
type Channel struct {
	Title       string
	Link        string
	Description string
	Author      string
	Explicit    bool
	ImageURL    string
	OwnerName   string
	OwnerEmail  string
}

// Settings is the read-only configuration consumed by the pipeline.
type Settings struct {
	MediaDir      string
	BaseURL       string
	ListenAddr    string
	ImageDir      string
	ImageBasePath string
	LogLevel      string
	Channel       Channel
}

// Load reads settings from defaults, an optional YAML file and PODCAST_*
// environment overrides. An empty path means the optional ./podcast-archive.yaml;
// an explicit path that cannot be read is an error.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PODCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	} else {
		v.SetConfigName("podcast-archive")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config file")
			}
		}
	}

	settings := &Settings{
		MediaDir:      v.GetString("media_dir"),
		BaseURL:       v.GetString("base_url"),
		ListenAddr:    v.GetString("listen_addr"),
		ImageDir:      v.GetString("image_dir"),
		ImageBasePath: v.GetString("image_base_path"),
		LogLevel:      v.GetString("log_level"),
		Channel: Channel{
			Title:       v.GetString("channel.title"),
			Link:        v.GetString("channel.link"),
			Description: v.GetString("channel.description"),
			Author:      v.GetString("channel.author"),
			Explicit:    v.GetBool("channel.explicit"),
			ImageURL:    v.GetString("channel.image_url"),
			OwnerName:   v.GetString("channel.owner_name"),
			OwnerEmail:  v.GetString("channel.owner_email"),
		},
	}

	if strings.TrimSpace(settings.ListenAddr) == "" {
		return nil, errors.New("listen_addr must not be blank")
	}
	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("media_dir", "podcasts")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("image_dir", "images")
	v.SetDefault("image_base_path", defaultImageBasePath)
	v.SetDefault("log_level", "info")
	v.SetDefault("channel.title", defaultChannelTitle)
	v.SetDefault("channel.link", "")
	v.SetDefault("channel.description", defaultChannelDescription)
	v.SetDefault("channel.author", defaultChannelAuthor)
	v.SetDefault("channel.explicit", false)
	v.SetDefault("channel.image_url", "")
	v.SetDefault("channel.owner_name", defaultOwnerName)
	v.SetDefault("channel.owner_email", defaultOwnerEmail)
}

// MediaRoot returns the media directory as a stable absolute path.
func (s *Settings) MediaRoot() string {
	abs, err := filepath.Abs(filepath.Clean(s.MediaDir))
	if err != nil {
		return filepath.Clean(s.MediaDir)
	}
	return abs
}

// NormalizedBaseURL keeps URL joining predictable by trimming trailing
// slashes.
func (s *Settings) NormalizedBaseURL() string {
	return trimTrailingSlash(s.BaseURL)
}

// NormalizedChannelLink falls back to the base URL so the RSS channel link
// is never blank.
func (s *Settings) NormalizedChannelLink() string {
	if strings.TrimSpace(s.Channel.Link) == "" {
		return s.NormalizedBaseURL()
	}
	return trimTrailingSlash(s.Channel.Link)
}

func (s *Settings) EffectiveChannelTitle() string {
	return nonBlank(s.Channel.Title, defaultChannelTitle)
}

func (s *Settings) EffectiveChannelDescription() string {
	return nonBlank(s.Channel.Description, defaultChannelDescription)
}

func (s *Settings) EffectiveChannelAuthor() string {
	return nonBlank(s.Channel.Author, defaultChannelAuthor)
}

// Owner tags should never be blank; some podcast validators require them.
func (s *Settings) EffectiveOwnerName() string {
	return nonBlank(s.Channel.OwnerName, defaultOwnerName)
}

func (s *Settings) EffectiveOwnerEmail() string {
	return nonBlank(s.Channel.OwnerEmail, defaultOwnerEmail)
}

// ChannelImageURL reports the configured channel artwork URL, absent when
// blank so no broken image tag is ever emitted.
func (s *Settings) ChannelImageURL() (string, bool) {
	trimmed := strings.TrimSpace(s.Channel.ImageURL)
	return trimmed, trimmed != ""
}

// NormalizedImageBasePath always starts with a slash and never ends with
// one, so baseURL + imageBasePath + "/" + filename joins predictably.
func (s *Settings) NormalizedImageBasePath() string {
	normalized := strings.TrimSpace(s.ImageBasePath)
	if normalized == "" {
		return defaultImageBasePath
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	for strings.HasSuffix(normalized, "/") && len(normalized) > 1 {
		normalized = normalized[:len(normalized)-1]
	}
	return normalized
}

// SlogLevel maps the configured log level onto slog, defaulting to Info.
func (s *Settings) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func nonBlank(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func trimTrailingSlash(value string) string {
	trimmed := strings.TrimSpace(value)
	for strings.HasSuffix(trimmed, "/") {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	return trimmed
}
