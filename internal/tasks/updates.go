package tasks

import (
	"fmt"

	"github.com/desertthunder/rmp/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPages Phase = iota
	FilterTracks
	SearchTracks
	FetchComments
)

func (p Phase) String() string {
	switch p {
	case FetchPages:
		return "fetch_pages"
	case FilterTracks:
		return "filter_tracks"
	case SearchTracks:
		return "search_tracks"
	case FetchComments:
		return "fetch_comments"
	default:
		return ""
	}
}

func fetchingPageUpdate(step, total int, subreddit string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching r/%s...", step, total, subreddit),
	}
}

func fetchedPageUpdate(step, total int, page *models.FeedPage, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %d posts, %d new tracks", step, total, len(page.Items), added),
		Data:    page,
	}
}

func filterUpdate(before, after int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Filtered %d tracks down to %d", before, after),
	}
}

func searchUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching for %q...", query),
	}
}

func searchResultUpdate(query string, results []models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("%d results for %q", len(results), query),
		Data:    results,
	}
}

func fetchCommentsUpdate(step, total int, postID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchComments,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching comments for %s...", postID),
	}
}
