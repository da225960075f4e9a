package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/catalog"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/filter"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/playback"
	"github.com/desertthunder/rmp/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FeedView ViewState = iota
	CommentsView
	SubredditView
)

// LoadState is the lifecycle of the data behind a view.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Failed
	Empty
	Ready
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputSubreddit
	inputRefine
)

// Opts wires a [Model] to the pipeline.
type Opts struct {
	Loader  *feed.Loader
	Session *playback.Session
	Query   models.FeedQuery
	Logger  *log.Logger

	// Open launches a URL externally; defaults to [shared.OpenBrowser].
	Open func(string) error
	Now  func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	loader  *feed.Loader
	session *playback.Session
	logger  *log.Logger
	open    func(string) error
	now     func() time.Time

	query   models.FeedQuery
	spec    filter.Spec
	preset  int
	refine  string // text of the active "name=value" refinement, "" when none
	tracks  []models.Track
	visible []models.Track
	after   string
	status  LoadState
	err     error
	notice  string

	threadTrack  models.Track
	thread       *feed.Thread
	threadStatus LoadState
	threadErr    error
	offset       int

	feedList list.Model
	subList  list.Model
	spinner  spinner.Model
	input    textinput.Model
	mode     inputMode
	help     help.Model
	keys     keyMap
	width    int
	height   int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	feedList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	feedList.SetFilteringEnabled(false)
	feedList.SetShowHelp(false)
	feedList.SetShowTitle(false)

	subList := list.New(subredditItems(catalog.Categories()), list.NewDefaultDelegate(), 0, 0)
	subList.Title = "Subreddits"
	subList.SetShowHelp(false)

	input := textinput.New()
	input.CharLimit = 100

	return &Model{
		ctx:      ctx,
		view:     FeedView,
		loader:   opts.Loader,
		session:  opts.Session,
		logger:   opts.Logger,
		open:     opts.Open,
		now:      opts.Now,
		query:    opts.Query,
		preset:   -1,
		status:   Loading,
		feedList: feedList,
		subList:  subList,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:    input,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Subscribe forwards every playback state change into program.
//
// Sends happen on their own goroutine since session changes are usually made from inside Update.
func Subscribe(program *tea.Program, session *playback.Session) {
	session.Subscribe(func(st playback.State) {
		go program.Send(playbackMsg(st))
	})
}

// Init starts loading the initial feed.
func (m *Model) Init() tea.Cmd {
	if m.query.Subreddit == catalog.CustomPath {
		m.view = SubredditView
		return m.promptSubreddit()
	}
	return m.load()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.feedList.SetSize(msg.Width-4, msg.Height-8)
		m.subList.SetSize(msg.Width-4, msg.Height-6)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.status != Loading && m.threadStatus != Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInputKeys(msg)
		}
		switch m.view {
		case FeedView:
			return m.handleFeedKeys(msg)
		case CommentsView:
			return m.handleCommentKeys(msg)
		case SubredditView:
			return m.handleSubredditKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgFeedLoaded:
		data := msg.data.(feedLoaded)
		if errors.Is(data.err, feed.ErrStale) {
			return m, nil
		}
		if data.err != nil {
			m.logger.Warn("feed load failed", "subreddit", m.query.Subreddit, "error", data.err)
			if data.more {
				m.status = Ready
				m.notice = "Could not load more: " + data.err.Error()
				return m, nil
			}
			m.status, m.err = Failed, data.err
			return m, nil
		}
		m.tracks = data.result.Tracks
		m.after = data.result.After
		m.err = nil
		if data.more {
			m.notice = ""
		}
		m.refresh()
		if !data.more && len(m.visible) > 0 && m.session.State().Status() == playback.StatusEmpty {
			m.warn(m.session.Replace(m.visible))
		}
		return m, nil

	case MsgThreadLoaded:
		data := msg.data.(threadLoaded)
		if errors.Is(data.err, feed.ErrStale) {
			return m, nil
		}
		if data.err != nil {
			m.threadStatus, m.threadErr = Failed, data.err
			return m, nil
		}
		m.thread = data.thread
		m.threadStatus = Ready
		if len(data.thread.Entries) == 0 {
			m.threadStatus = Empty
		}
		return m, nil

	case MsgPlayback:
		m.syncItems()
		return m, nil

	case MsgOpened:
		data := msg.data.(struct {
			url string
			err error
		})
		if data.err != nil {
			m.notice = "Could not open " + data.url
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		m.loader.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if t, ok := m.selected(); ok {
			m.warn(m.session.Select(t))
			if !t.Playable() {
				m.notice = "Not playable here; press o to open it"
			}
			m.syncItems()
		}
		return m, nil
	case key.Matches(msg, m.keys.play):
		m.warn(m.session.TogglePlay())
		m.syncItems()
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.warn(m.session.Next())
		m.syncItems()
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.warn(m.session.Previous())
		m.syncItems()
		return m, nil
	case key.Matches(msg, m.keys.shuffle):
		m.warn(m.session.ToggleShuffle())
		return m, nil
	case key.Matches(msg, m.keys.repeat):
		m.warn(m.session.ToggleRepeat())
		return m, nil
	case key.Matches(msg, m.keys.comments):
		if t, ok := m.selected(); ok {
			m.view = CommentsView
			return m, m.loadThread(t)
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if t, ok := m.selected(); ok {
			return m, m.openURL(t.WatchURL())
		}
		return m, nil
	case key.Matches(msg, m.keys.search):
		return m, m.startInput(inputSearch, "search: ", m.spec.Query)
	case key.Matches(msg, m.keys.preset):
		m.cyclePreset()
		return m, nil
	case key.Matches(msg, m.keys.refine):
		return m, m.startInput(inputRefine, "filter: ", m.refine)
	case key.Matches(msg, m.keys.more):
		if m.after == "" || m.status == Loading {
			return m, nil
		}
		return m, m.loadMore()
	case key.Matches(msg, m.keys.reload):
		return m, m.load()
	case key.Matches(msg, m.keys.browse):
		m.view = SubredditView
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.spec.Query != "" {
			m.spec.Query = ""
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.feedList, cmd = m.feedList.Update(msg)
	return m, cmd
}

func (m *Model) handleCommentKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.loader.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = FeedView
		return m, nil
	case key.Matches(msg, m.keys.up):
		m.offset = max(m.offset-1, 0)
	case key.Matches(msg, m.keys.down):
		m.offset++
	case key.Matches(msg, m.keys.open):
		return m, m.openURL(m.threadTrack.DiscussionURL())
	case key.Matches(msg, m.keys.reload):
		return m, m.loadThread(m.threadTrack)
	case key.Matches(msg, m.keys.play):
		m.warn(m.session.TogglePlay())
	}
	return m, nil
}

func (m *Model) handleSubredditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.subList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.subList, cmd = m.subList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.loader.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = FeedView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		item, ok := m.subList.SelectedItem().(subredditItem)
		if !ok {
			return m, nil
		}
		if item.sub.Custom() {
			return m, m.promptSubreddit()
		}
		return m, m.switchSubreddit(item.sub.Name)
	}

	var cmd tea.Cmd
	m.subList, cmd = m.subList.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		mode, value := m.mode, strings.TrimSpace(m.input.Value())
		m.mode = inputNone
		m.input.Blur()
		switch mode {
		case inputSearch:
			m.spec.Query = value
			m.refresh()
		case inputSubreddit:
			if value == "" {
				return m, nil
			}
			return m, m.switchSubreddit(strings.TrimPrefix(value, "r/"))
		case inputRefine:
			if err := m.applyRefinement(value); err != nil {
				m.notice = "Filter not applied: " + err.Error()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case CommentsView:
		body = m.renderComments()
	case SubredditView:
		body = m.subList.View()
	default:
		body = m.renderFeed()
	}

	parts := []string{body}
	if m.mode != inputNone {
		parts = append(parts, m.input.View())
	}
	if m.notice != "" {
		parts = append(parts, styles.warn.Render(m.notice))
	}
	parts = append(parts, m.renderNowPlaying(), m.renderHelp())
	return strings.Join(parts, "\n")
}

func (m *Model) renderFeed() string {
	title := styles.title.Render(m.feedTitle())
	switch m.status {
	case Loading:
		return fmt.Sprintf("%s\n%s Loading r/%s...", title, m.spinner.View(), m.query.Subreddit)
	case Failed:
		return fmt.Sprintf("%s\n%s", title, styles.err.Render(fmt.Sprintf("Failed to load: %v\n\nPress R to retry", m.err)))
	case Empty:
		msg := fmt.Sprintf("No tracks in r/%s.", m.query.Subreddit)
		if len(m.tracks) > 0 {
			msg = "No tracks match the current filter. Press esc to clear the search or f to change the filter."
		}
		return fmt.Sprintf("%s\n%s", title, styles.muted.Render(msg))
	default:
		return fmt.Sprintf("%s\n%s", title, m.feedList.View())
	}
}

func (m *Model) feedTitle() string {
	title := fmt.Sprintf("r/%s · %s", m.query.Subreddit, m.query.Sort)
	if m.query.Sort == models.SortTop {
		title += " · " + string(m.query.Window)
	}
	if m.preset >= 0 {
		title += " · " + filter.Presets()[m.preset].Name
	}
	if m.refine != "" {
		title += " · " + m.refine
	}
	if m.spec.Query != "" {
		title += fmt.Sprintf(" · %q", m.spec.Query)
	}
	if m.status == Ready {
		title += fmt.Sprintf(" (%d)", len(m.visible))
	}
	return title
}

func (m *Model) renderComments() string {
	title := styles.title.Render(m.threadTrack.Title)
	switch m.threadStatus {
	case Loading:
		return fmt.Sprintf("%s\n%s Loading comments...", title, m.spinner.View())
	case Failed:
		return fmt.Sprintf("%s\n%s", title, styles.err.Render(fmt.Sprintf("Failed to load comments: %v\n\nPress R to retry", m.threadErr)))
	case Empty:
		return fmt.Sprintf("%s\n%s", title, styles.muted.Render("No comments yet."))
	}

	now := m.now()
	var lines []string
	for _, e := range m.thread.Entries {
		header := fmt.Sprintf("%s %s",
			styles.author.Render(e.Author),
			styles.muted.Render(fmt.Sprintf("%s points · %s", shared.FormatCount(e.Score), shared.FormatTimeAgo(e.CreatedAt, now))),
		)
		lines = append(lines, indent(header, e.Depth), indent(e.Body, e.Depth+1), "")
	}
	lines = strings.Split(strings.Join(lines, "\n"), "\n")

	height := max(m.height-8, 5)
	m.offset = min(m.offset, max(len(lines)-height, 0))
	end := min(m.offset+height, len(lines))

	count := fmt.Sprintf("%d of %d comments", len(m.thread.Entries), m.thread.Total)
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.muted.Render(count), strings.Join(lines[m.offset:end], "\n"))
}

func (m *Model) renderNowPlaying() string {
	st := m.session.State()
	cur, ok := st.Current()
	if !ok {
		return styles.bar.Render("Nothing playing")
	}

	icon := "❚❚"
	if st.Playing {
		icon = "▶"
	}
	line := fmt.Sprintf("%s %s  [%d/%d]", icon, cur.Title, st.Index+1, len(st.Playlist))
	if st.Shuffle {
		line += "  shuffle"
	}
	if st.Repeat != playback.RepeatOff {
		line += "  repeat " + string(st.Repeat)
	}
	return styles.bar.Render(line)
}

func (m *Model) renderHelp() string {
	var keys []key.Binding
	switch m.view {
	case CommentsView:
		keys = []key.Binding{m.keys.up, m.keys.down, m.keys.open, m.keys.reload, m.keys.back, m.keys.quit}
	case SubredditView:
		keys = []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	default:
		return m.help.View(m.keys)
	}
	return m.help.ShortHelpView(keys)
}

// refresh recomputes the visible tracks from the loaded tracks and the active filter.
//
// Without a preset, refinement, or search the feed keeps the listing's own order.
// A search with no explicit sort key ranks by relevance.
func (m *Model) refresh() {
	if m.preset < 0 && m.refine == "" && m.spec.Query == "" {
		m.visible = m.tracks
	} else {
		spec := m.spec
		if spec.Query != "" && spec.SortBy == "" {
			spec.SortBy = filter.SortRelevance
		}
		m.visible = filter.ApplyAt(m.tracks, spec, m.now())
	}

	m.status = Ready
	if len(m.visible) == 0 {
		m.status = Empty
	}
	m.syncItems()
}

// syncItems rebuilds the list items so the playing marker follows the session.
func (m *Model) syncItems() {
	st := m.session.State()
	cur, hasCur := st.Current()
	now := m.now()

	items := make([]list.Item, len(m.visible))
	for i, t := range m.visible {
		current := hasCur && cur.ID == t.ID
		items[i] = trackItem{track: t, current: current, playing: current && st.Playing, now: now}
	}
	m.feedList.SetItems(items)
}

func (m *Model) cyclePreset() {
	presets := filter.Presets()
	m.preset++
	if m.preset >= len(presets) {
		m.preset = -1
	}

	query := m.spec.Query
	m.spec, m.refine = filter.Spec{}, ""
	if m.preset >= 0 {
		m.spec = presets[m.preset].Spec
	}
	m.spec.Query = query
	m.refresh()
}

// applyRefinement replaces the active filter with "name=value" pairs such as
// "min-score=-5 sort-by=date order=asc has-thumbnail date=week". A bare name
// means true. Empty text drops the refinement and keeps the search.
func (m *Model) applyRefinement(text string) error {
	spec, err := parseRefinement(text)
	if err != nil {
		return err
	}

	query := m.spec.Query
	m.preset, m.refine, m.spec = -1, "", filter.Spec{Query: query}
	if spec != nil {
		m.spec, m.refine = *spec, strings.Join(strings.Fields(text), " ")
		if m.spec.Query == "" {
			m.spec.Query = query
		}
	}
	m.refresh()
	return nil
}

func parseRefinement(text string) (*filter.Spec, error) {
	values := make(map[string]string)
	for _, field := range strings.Fields(text) {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			value = "true"
		}
		if !slices.Contains(filter.Params, name) {
			return nil, fmt.Errorf("unknown filter %q", name)
		}
		values[name] = value
	}
	return filter.FromParams(func(name string) string { return values[name] })
}

func (m *Model) selected() (models.Track, bool) {
	if m.status != Ready {
		return models.Track{}, false
	}
	item, ok := m.feedList.SelectedItem().(trackItem)
	if !ok {
		return models.Track{}, false
	}
	return item.track, true
}

func (m *Model) warn(err error) {
	if err != nil {
		m.logger.Warn("playback", "error", err)
		m.notice = err.Error()
	}
}

func (m *Model) startInput(mode inputMode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) promptSubreddit() tea.Cmd {
	return m.startInput(inputSubreddit, "r/", "")
}

func (m *Model) switchSubreddit(name string) tea.Cmd {
	m.query.Subreddit = name
	m.query.After = ""
	m.view = FeedView
	m.feedList.ResetSelected()
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.status = Loading
	m.after = ""
	q := m.query
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		result, err := m.loader.Load(m.ctx, q)
		return feedLoadedMsg(result, false, err)
	})
}

func (m *Model) loadMore() tea.Cmd {
	m.notice = "Loading more..."
	return func() tea.Msg {
		result, err := m.loader.LoadMore(m.ctx)
		return feedLoadedMsg(result, true, err)
	}
}

func (m *Model) loadThread(track models.Track) tea.Cmd {
	m.threadTrack = track
	m.thread = nil
	m.threadStatus = Loading
	m.threadErr = nil
	m.offset = 0
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		thread, err := m.loader.LoadThread(m.ctx, track)
		return threadLoadedMsg(thread, err)
	})
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return openedMsg(url, open(url))
	}
}
