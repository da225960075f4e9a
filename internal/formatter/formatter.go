// package formatter renders track lists and comment threads to export formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/rmp/internal/comments"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat validates an export format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Export renders tracks in the given format. title heads the Markdown and text outputs.
func Export(format Format, title string, tracks []models.Track) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(tracks)
	case FormatMarkdown:
		return ExportToMarkdown(title, tracks)
	case FormatJSON:
		return ExportToJSON(tracks)
	case FormatText:
		return ExportToText(title, tracks)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

var csvHeaders = []string{"ID", "Title", "Artist", "Song", "Subreddit", "Score", "Comments", "Source", "MediaID", "URL", "Permalink", "CreatedAt"}

// ExportToCSV converts tracks to CSV with one row per track.
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		created := ""
		if !track.CreatedAt.IsZero() {
			created = track.CreatedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Song,
			track.Subreddit,
			strconv.Itoa(track.Score),
			strconv.Itoa(track.Comments),
			string(track.Source),
			track.MediaID,
			track.URL,
			track.DiscussionURL(),
			created,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders tracks as a numbered Markdown list linking each post's media and discussion.
func ExportToMarkdown(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", title)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. [%s](%s) (%s, %d points, [%d comments](%s))\n",
			i+1, escapeMarkdown(track.Title), track.WatchURL(),
			sourceLabel(track), track.Score, track.Comments, track.DiscussionURL())
	}
	return buf.Bytes(), nil
}

// ExportToText renders tracks as plain numbered lines.
func ExportToText(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		fmt.Fprintf(&buf, "Feed: %s\n", title)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		name := track.Title
		if track.Artist != "" {
			name = track.Artist + " - " + track.Song
		}
		fmt.Fprintf(&buf, "%d. %s <%s>\n", i+1, name, track.WatchURL())
	}
	return buf.Bytes(), nil
}

// ExportToJSON renders tracks as an indented JSON array.
func ExportToJSON(tracks []models.Track) ([]byte, error) {
	if tracks == nil {
		tracks = []models.Track{}
	}
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tracks: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportThread renders a flattened comment thread as indented plain text, two spaces per depth level.
func ExportThread(track models.Track, entries []comments.Entry, now time.Time) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n%s\n\n", track.Title, track.DiscussionURL())
	if len(entries) == 0 {
		buf.WriteString("No comments.\n")
		return buf.Bytes()
	}

	for _, e := range entries {
		indent := strings.Repeat("  ", e.Depth)
		fmt.Fprintf(&buf, "%s%s · %s points · %s\n", indent, e.Author, shared.FormatCount(e.Score), shared.FormatTimeAgo(e.CreatedAt, now))
		for _, line := range strings.Split(strings.TrimSpace(e.Body), "\n") {
			fmt.Fprintf(&buf, "%s  %s\n", indent, line)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// WriteExport writes data to path, creating parent directories as needed.
//
// When path has no extension the format's extension is appended. Returns the final path.
func WriteExport(path string, format Format, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if filepath.Ext(path) == "" {
		path += format.Extension()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func sourceLabel(t models.Track) string {
	if t.Source == "" {
		return t.Domain
	}
	return string(t.Source)
}

var markdownEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }
