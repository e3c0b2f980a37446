package main

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateCommandPrintsFeed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "episode1.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	output, err := runCommand(t, "generate", root, "--url", "http://example.com", "--title", "My Cast")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var doc struct {
		Channel struct {
			Title string `xml:"title"`
			Items []struct {
				Title     string `xml:"title"`
				Enclosure struct {
					URL string `xml:"url,attr"`
				} `xml:"enclosure"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("output is not well-formed XML: %v", err)
	}

	if doc.Channel.Title != "My Cast" {
		t.Fatalf("expected channel title 'My Cast', got %q", doc.Channel.Title)
	}
	if len(doc.Channel.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(doc.Channel.Items))
	}
	if doc.Channel.Items[0].Title != "episode1" {
		t.Fatalf("expected item title 'episode1', got %q", doc.Channel.Items[0].Title)
	}
	if doc.Channel.Items[0].Enclosure.URL != "http://example.com/episode1.mp3" {
		t.Fatalf("unexpected enclosure URL %q", doc.Channel.Items[0].Enclosure.URL)
	}
}

func TestGenerateCommandMissingDirectory(t *testing.T) {
	root := t.TempDir()

	if _, err := runCommand(t, "generate", filepath.Join(root, "gone")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestGenerateCommandRequiresDirectoryArgument(t *testing.T) {
	output, err := runCommand(t, "generate")
	if err == nil {
		t.Fatalf("expected usage error when DIRECTORY is omitted")
	}
	if strings.Contains(output, "<rss") {
		t.Fatalf("expected no feed output without DIRECTORY, got %q", output)
	}
}

func TestServeCommandRequiresDirectoryArgument(t *testing.T) {
	if _, err := runCommand(t, "serve"); err == nil {
		t.Fatalf("expected usage error when DIRECTORY is omitted")
	}
}

func TestUnknownCommandFails(t *testing.T) {
	if _, err := runCommand(t, "bogus"); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestRootCommandWithoutSubcommandFails(t *testing.T) {
	output, err := runCommand(t)
	if err == nil {
		t.Fatalf("expected error when no command is given")
	}
	if !strings.Contains(output, "generate") || !strings.Contains(output, "serve") {
		t.Fatalf("expected help output to list subcommands, got %q", output)
	}
}
