package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRootURL suits the built-in server's default bind address.
	DefaultRootURL    = "http://localhost:5000"
	DefaultListenAddr = ":5000"
)

// Options holds the raw command-line values before defaulting.
type Options struct {
	Directory      string
	URL            string
	Title          string
	Link           string
	ListenAddr     string
	FeedConfigPath string
}

// Config is the fully resolved runtime configuration.
type Config struct {
	RootDir    string
	RootURL    string
	Title      string
	Link       string
	ListenAddr string
	Feed       FeedMetadata
}

// FeedMetadata carries the optional channel-level feed fields.
type FeedMetadata struct {
	Description string
	Language    string
	Author      string
}

type feedConfigYAML struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
}

// Load resolves the configuration from the parsed command-line values,
// environment variables and the optional feed metadata file. Precedence
// per field: flag, then environment, then file, then default. Title and
// link may stay empty; the channel derives their defaults.
func Load(opts Options) (Config, error) {
	rootDir, err := resolveRootDir(opts.Directory)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RootDir:    rootDir,
		RootURL:    firstNonEmpty(opts.URL, os.Getenv("PODCATS_URL"), DefaultRootURL),
		Title:      firstNonEmpty(opts.Title, os.Getenv("PODCATS_TITLE")),
		Link:       firstNonEmpty(opts.Link, os.Getenv("PODCATS_LINK")),
		ListenAddr: firstNonEmpty(opts.ListenAddr, os.Getenv("PODCATS_ADDR"), DefaultListenAddr),
	}

	feedConfig := firstNonEmpty(opts.FeedConfigPath, os.Getenv("PODCATS_FEED_CONFIG"))
	if feedConfig != "" {
		fileValues, err := loadFeedConfig(feedConfig)
		if err != nil {
			return Config{}, err
		}
		if cfg.Title == "" {
			cfg.Title = fileValues.Title
		}
		if cfg.Link == "" {
			cfg.Link = fileValues.Link
		}
		cfg.Feed = FeedMetadata{
			Description: fileValues.Description,
			Language:    fileValues.Language,
			Author:      fileValues.Author,
		}
	}

	return cfg, nil
}

func resolveRootDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}

	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}

	return abs, nil
}

func loadFeedConfig(path string) (feedConfigYAML, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return feedConfigYAML{}, fmt.Errorf("feed config: %w", err)
	}

	var values feedConfigYAML
	if err := yaml.Unmarshal(data, &values); err != nil {
		return feedConfigYAML{}, fmt.Errorf("feed config %s: %w", path, err)
	}

	values.Title = strings.TrimSpace(values.Title)
	values.Link = strings.TrimSpace(values.Link)
	values.Description = strings.TrimSpace(values.Description)
	values.Language = strings.TrimSpace(values.Language)
	values.Author = strings.TrimSpace(values.Author)
	return values, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
