package metadata

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"github.com/hangyav/podcats/internal/models"
)

// BuildEpisode constructs the feed entry for the audio file at path.
// relativePath is the slash-separated path below the scan root and
// enclosureURL the externally reachable URL for the file.
//
// A missing or unparseable tag container degrades the episode to
// filename- and mtime-derived fields; filesystem errors are returned.
func BuildEpisode(path, relativePath, enclosureURL string) (models.Episode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Episode{}, fmt.Errorf("stat %s: %w", path, err)
	}

	tags, err := readTags(path)
	if err != nil {
		return models.Episode{}, err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artist := ""
	pubDate := info.ModTime()

	if tags != nil {
		// Tag title and comment are appended to the filename stem,
		// not substituted for it.
		if tags.title != "" {
			title += tags.title
		}
		if tags.comment != "" {
			title += " " + tags.comment
		}
		artist = tags.artist
		if parsed, ok := parseTagDate(tags.date); ok {
			pubDate = parsed
		}
	}

	var durationPtr *float64
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		dur, err := computeMP3Duration(path)
		if err == nil && dur > 0 {
			duration := dur
			durationPtr = &duration
		}
	}

	return models.Episode{
		RelativePath:    relativePath,
		Filename:        filepath.Base(path),
		EnclosureURL:    enclosureURL,
		Title:           title,
		Artist:          artist,
		PubDate:         pubDate,
		MIMEType:        MIMETypeForPath(path),
		SizeBytes:       info.Size(),
		DurationSeconds: durationPtr,
	}, nil
}

// fileTags holds the first value of each tag the feed cares about.
type fileTags struct {
	title   string
	comment string
	artist  string
	date    string
}

// readTags returns nil without error when the file carries no parseable
// tag container, so a plain audio file still yields an episode. Only
// format-level decode failures are suppressed; errors from the
// filesystem itself are returned.
func readTags(path string) (*fileTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		// Absent, truncated or corrupt tag container.
		return nil, nil
	}

	return &fileTags{
		title:   strings.TrimSpace(meta.Title()),
		comment: strings.TrimSpace(meta.Comment()),
		artist:  strings.TrimSpace(meta.Artist()),
		date:    dateValue(meta),
	}, nil
}

// Recording-date frames across tag formats, most specific first.
var dateFrames = []string{"TDRC", "TDRL", "TDAT", "TYER", "TORY", "date", "DATE", "\xa9day"}

func dateValue(meta tag.Metadata) string {
	raw := meta.Raw()
	for _, key := range dateFrames {
		if value, ok := raw[key]; ok {
			if s := frameText(value); s != "" {
				return s
			}
		}
	}
	if year := meta.Year(); year > 0 {
		return strconv.Itoa(year)
	}
	return ""
}

func frameText(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case *tag.Comm:
		return strings.TrimSpace(v.Text)
	case tag.Comm:
		return strings.TrimSpace(v.Text)
	default:
		return ""
	}
}

// Accepted date layouts in decreasing granularity; the first that
// parses wins.
var dateLayouts = []string{
	"2006-01-02:15:04:05",
	"2006-01-02:15:04",
	"2006-01-02:15",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseTagDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// MIMETypeForPath infers a content type from the file extension alone.
// It returns the empty string for extensions with no known type.
func MIMETypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	if value := mime.TypeByExtension(ext); value != "" {
		return value
	}
	return fallbackMIMETypes[ext]
}

// Covers audio extensions missing from some platform MIME registries.
var fallbackMIMETypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".m4b":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
}

// IsAudio reports whether the sniffed MIME type's top-level category is
// audio.
func IsAudio(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/")
}

func computeMP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}
