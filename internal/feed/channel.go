package feed

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hangyav/podcats/internal/metadata"
	"github.com/hangyav/podcats/internal/models"
)

// Metadata carries the optional channel-level feed fields.
type Metadata struct {
	Description string
	Language    string
	Author      string
}

// Channel generates one podcast feed from a directory tree. It holds no
// episode state: every serialization request re-walks the filesystem so
// the feed always reflects the current directory contents.
type Channel struct {
	RootDir string
	RootURL string
	Title   string
	Link    string
	Meta    Metadata

	logger *log.Logger
}

// NewChannel builds a channel for rootDir, applying the defaulting
// rules: rootDir falls back to the working directory, the title to the
// directory's base name and the link to the root URL.
func NewChannel(rootDir, rootURL, title, link string, meta Metadata, logger *log.Logger) (*Channel, error) {
	if logger == nil {
		logger = log.Default()
	}

	if rootDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		rootDir = cwd
	}

	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = filepath.Base(abs)
	}

	rootURL = strings.TrimRight(rootURL, "/")
	if link == "" {
		link = rootURL
	}

	return &Channel{
		RootDir: abs,
		RootURL: rootURL,
		Title:   title,
		Link:    link,
		Meta:    meta,
		logger:  logger,
	}, nil
}

// Episodes walks the root directory and returns the audio files found,
// oldest first. A failure on the root itself is returned; individual
// unreadable entries and undecodable files are logged and skipped.
func (c *Channel) Episodes() ([]models.Episode, error) {
	var episodes []models.Episode

	err := filepath.WalkDir(c.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.RootDir {
				return fmt.Errorf("scan %s: %w", c.RootDir, err)
			}
			c.logger.Printf("skipping %s: %v", path, err)
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		if !metadata.IsAudio(metadata.MIMETypeForPath(path)) {
			return nil
		}

		relative, err := filepath.Rel(c.RootDir, path)
		if err != nil {
			c.logger.Printf("skipping %s: %v", path, err)
			return nil
		}
		relative = filepath.ToSlash(relative)

		episode, err := metadata.BuildEpisode(path, relative, c.RootURL+"/"+relative)
		if err != nil {
			c.logger.Printf("skipping %s: %v", path, err)
			return nil
		}

		episodes = append(episodes, episode)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		if episodes[i].PubDate.Equal(episodes[j].PubDate) {
			return episodes[i].RelativePath < episodes[j].RelativePath
		}
		return episodes[i].PubDate.Before(episodes[j].PubDate)
	})

	return episodes, nil
}
