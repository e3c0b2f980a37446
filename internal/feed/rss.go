package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/hangyav/podcats/internal/models"
)

// XML performs a fresh directory scan and renders the RSS 2.0 document
// for the channel.
func (c *Channel) XML() ([]byte, error) {
	episodes, err := c.Episodes()
	if err != nil {
		return nil, err
	}
	return c.render(episodes)
}

func (c *Channel) render(episodes []models.Episode) ([]byte, error) {
	rss := rssFeed{
		Version:  "2.0",
		AtomNS:   "http://www.w3.org/2005/Atom",
		ITunesNS: "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: rssChannel{
			Title:        c.Title,
			Link:         c.Link,
			Description:  c.Meta.Description,
			Language:     c.Meta.Language,
			Generator:    "podcats",
			ITunesAuthor: c.Meta.Author,
			AtomLink: rssAtomLink{
				Href: c.RootURL + "/",
				Rel:  "self",
				Type: "application/rss+xml",
			},
		},
	}

	// lastBuildDate tracks the newest episode; the clock never enters
	// the output, so an unchanged directory renders identical bytes.
	if len(episodes) > 0 {
		last := episodes[len(episodes)-1].PubDate
		rss.Channel.LastBuildDate = last.UTC().Format(time.RFC1123Z)
	}

	for _, ep := range episodes {
		item := rssItem{
			Title:   ep.Title,
			Link:    ep.EnclosureURL,
			GUID:    rssGUID{IsPermaLink: "false", Value: ep.EnclosureURL},
			PubDate: ep.PubDate.UTC().Format(time.RFC1123Z),
			Enclosure: rssEnclosure{
				URL:    ep.EnclosureURL,
				Length: ep.SizeBytes,
				Type:   ep.MIMEType,
			},
		}

		if ep.DurationSeconds != nil {
			item.ITunesDuration = formatDuration(*ep.DurationSeconds)
		}

		if ep.Artist != "" {
			item.ITunesAuthor = ep.Artist
		} else if c.Meta.Author != "" {
			item.ITunesAuthor = c.Meta.Author
		}

		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), output...), nil
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int64(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language,omitempty"`
	LastBuildDate string      `xml:"lastBuildDate,omitempty"`
	Generator     string      `xml:"generator"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	ITunesAuthor  string      `xml:"itunes:author,omitempty"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Link           string       `xml:"link"`
	GUID           rssGUID      `xml:"guid"`
	PubDate        string       `xml:"pubDate"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	ITunesDuration string       `xml:"itunes:duration,omitempty"`
	ITunesAuthor   string       `xml:"itunes:author,omitempty"`
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
