package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/rmp/internal/comments"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
	th "github.com/desertthunder/rmp/internal/testing"
)

func fixtures() []models.Track {
	one := th.Track("abc", "Artist One - Song One", 120)
	one.Artist, one.Song = "Artist One", "Song One"
	one.Comments = 4

	two := th.Track("def", "Loose [live] recording", 7)
	two.MediaID = ""
	two.Source = models.SourceBandcamp
	two.URL = "https://band.bandcamp.com/track/loose"
	return []models.Track{one, two}
}

func TestExporters(t *testing.T) {
	tracks := fixtures()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(tracks)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Title,Artist,Song,Subreddit,Score,Comments,Source,MediaID,URL,Permalink,CreatedAt\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "abc,Artist One - Song One,Artist One,Song One,listentothis,120,4,youtube,vid_abc0000") {
			t.Errorf("CSV missing first track row, got: %s", output)
		}
		if !strings.Contains(output, "https://www.reddit.com/r/listentothis/comments/abc/post/") {
			t.Errorf("CSV missing absolute permalink")
		}
		if !strings.Contains(output, "2024-01-01T00:00:00Z") {
			t.Errorf("CSV missing created timestamp")
		}
		if got := strings.Count(output, "\n"); got != 3 {
			t.Errorf("expected 3 lines, got %d", got)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("r/listentothis", tracks)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# r/listentothis",
			"**Tracks**: 2",
			"## Tracks",
			"1. [Artist One - Song One](https://www.youtube.com/watch?v=vid_abc0000) (youtube, 120 points",
			`2. [Loose \[live\] recording](https://band.bandcamp.com/track/loose) (bandcamp, 7 points`,
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without title", func(t *testing.T) {
		data, _ := ExportToMarkdown("", nil)
		if strings.HasPrefix(string(data), "#") {
			t.Errorf("expected no heading, got %q", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText("r/listentothis", tracks)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Feed: r/listentothis") {
			t.Errorf("Text missing feed name")
		}
		if !strings.Contains(output, "Tracks: 2") {
			t.Errorf("Text missing track count")
		}
		if !strings.Contains(output, "1. Artist One - Song One <https://www.youtube.com/watch?v=vid_abc0000>") {
			t.Errorf("Text missing track1, got: %s", output)
		}
		if !strings.Contains(output, "2. Loose [live] recording <https://band.bandcamp.com/track/loose>") {
			t.Errorf("Text missing track2, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(tracks)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []models.Track
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].MediaID != "vid_abc0000" {
			t.Errorf("unexpected decoded tracks: %+v", decoded)
		}
	})

	t.Run("ExportToJSON empty", func(t *testing.T) {
		data, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %q", data)
		}
	})
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		ext     string
		wantErr bool
	}{
		{in: "csv", want: FormatCSV, ext: ".csv"},
		{in: "MD", want: FormatMarkdown, ext: ".md"},
		{in: "markdown", want: FormatMarkdown, ext: ".md"},
		{in: "txt", want: FormatText, ext: ".txt"},
		{in: "", want: FormatText, ext: ".txt"},
		{in: "json", want: FormatJSON, ext: ".json"},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if got.Extension() != tt.ext {
				t.Errorf("expected extension %q, got %q", tt.ext, got.Extension())
			}
		})
	}

	t.Run("Export dispatches by format", func(t *testing.T) {
		data, err := Export(FormatCSV, "ignored", fixtures())
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "ID,") {
			t.Errorf("expected CSV output, got %q", data)
		}

		if _, err := Export(Format("yaml"), "", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestExportThread(t *testing.T) {
	now := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	track := th.Track("abc", "Artist One - Song One", 120)

	t.Run("indents replies by depth", func(t *testing.T) {
		tree := []models.Comment{
			th.Comment("c1", "alice", "great track\nsecond line",
				th.Comment("c2", "bob", "agreed"),
			),
		}
		output := string(ExportThread(track, comments.ForDisplay(tree), now))

		for _, want := range []string{
			"Artist One - Song One\nhttps://www.reddit.com/r/listentothis/comments/abc/post/\n",
			"alice · 1 points · 2h ago\n  great track\n  second line\n",
			"  bob · 1 points · 2h ago\n    agreed\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("thread missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("empty thread", func(t *testing.T) {
		output := string(ExportThread(track, nil, now))
		if !strings.Contains(output, "No comments.") {
			t.Errorf("expected empty marker, got %q", output)
		}
	})
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()

	t.Run("appends extension", func(t *testing.T) {
		path, err := WriteExport(filepath.Join(dir, "nested", "feed"), FormatMarkdown, []byte("# feed\n"))
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if filepath.Ext(path) != ".md" {
			t.Errorf("expected .md extension, got %s", path)
		}
		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != "# feed\n" {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("keeps explicit extension", func(t *testing.T) {
		path, err := WriteExport(filepath.Join(dir, "tracks.data"), FormatCSV, []byte("x"))
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if filepath.Base(path) != "tracks.data" {
			t.Errorf("unexpected path %s", path)
		}
	})

	t.Run("requires path", func(t *testing.T) {
		if _, err := WriteExport("", FormatText, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
