package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"blogdeck/internal/logging"
	"blogdeck/internal/store"
	"blogdeck/internal/types"
)

const (
	minSidebarWidth  = 28
	maxSidebarWidth  = 44
	minContentHeight = 6
	statusLineRows   = 1
)

// Model is the bubbletea program: one update loop, one transaction per
// message. The Navigator never runs outside Update, which is what makes a
// transaction atomic without locks.
type Model struct {
	repo    store.Repository
	nav     *Navigator
	sidebar *SidebarController
	logger  logging.Logger

	events        <-chan store.Event
	unsubscribe   func()
	badgeInterval time.Duration

	width   int
	height  int
	loaded  bool
	unseen  int
	status  string
	content string
	empty   bool
}

// NewModel builds the program model. badgeInterval drives the periodic
// refresh of comment and notification badges; zero or negative disables it.
func NewModel(repo store.Repository, logger logging.Logger, badgeInterval time.Duration) *Model {
	if logger == nil {
		logger = logging.Nop()
	}
	events, cancel := repo.Subscribe()
	return &Model{
		repo:          repo,
		nav:           NewNavigator(),
		sidebar:       NewSidebarController(),
		logger:        logger,
		events:        events,
		unsubscribe:   cancel,
		badgeInterval: badgeInterval,
		status:        "loading…",
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadInitialCmd(), m.waitForEventCmd(), m.badgeTickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sidebar.SetSize(m.sidebarWidth(), max(m.height-statusLineRows, minContentHeight))
		return m, nil

	case initialLoadMsg:
		return m.applyInitialLoad(msg)

	case storeEventMsg:
		if !msg.ok {
			// Store closed; keep rendering the last snapshot.
			return m, nil
		}
		cmd := m.applyStoreEvent(msg.event)
		return m, tea.Batch(cmd, m.waitForEventCmd())

	case resyncMsg:
		if msg.err != nil {
			m.logger.Error("resync failed", logging.F("err", msg.err))
			return m, nil
		}
		// SetData re-resolves the selection by identity, so a resync keeps
		// the user's place when it still exists.
		tx := m.nav.SetData(msg.blogs, msg.session)
		return m, m.applyTransaction(tx)

	case badgeTickMsg:
		// Badges decorate rows only; the section model never changes shape
		// from a refresh.
		m.refreshSidebar(Transaction{})
		return m, m.badgeTickCmd()

	case navStateSavedMsg:
		if msg.err != nil {
			// Persistence failures are non-fatal: the next selection
			// overwrites, restore treats absence as no selection.
			m.logger.Warn("nav state save failed", logging.F("err", msg.err))
		}
		return m, nil

	case clipboardResultMsg:
		if msg.err != nil {
			m.status = "copy failed"
			m.logger.Warn("clipboard copy failed", logging.F("err", msg.err))
		} else {
			m.status = "site address copied"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		m.unsubscribe()
		return m, tea.Quit
	case "up", "k":
		m.sidebar.CursorUp()
		return m, nil
	case "down", "j":
		m.sidebar.CursorDown()
		return m, nil
	case "enter", " ", "space":
		return m.activateCursor()
	case "c":
		return m.copySiteAddress()
	}
	return m, nil
}

// activateCursor runs the transaction for the item under the cursor: headers
// toggle, rows select. A row inside a collapsed section cannot be under the
// cursor because it is not rendered.
func (m *Model) activateCursor() (tea.Model, tea.Cmd) {
	item := m.sidebar.CursorItem()
	if item == nil {
		return m, nil
	}
	switch item.kind {
	case sidebarSectionHeader:
		if item.trailing || item.blog == nil {
			return m, nil
		}
		tx := m.nav.Toggle(item.blog.ID)
		return m, m.applyTransaction(tx)
	case sidebarActionRow:
		coord, ok := item.coordinate()
		if !ok {
			return m, nil
		}
		tx, err := m.nav.Select(coord)
		if err != nil {
			// Stale cursor against a newer snapshot; fall back rather
			// than surface anything.
			m.logger.Debug("select rejected", logging.F("section", coord.Section), logging.F("row", coord.Row))
			tx = m.nav.RestoreSelection(types.NavState{})
		}
		return m, m.applyTransaction(tx)
	}
	return m, nil
}

func (m *Model) copySiteAddress() (tea.Model, tea.Cmd) {
	item := m.sidebar.CursorItem()
	if item == nil || item.blog == nil || item.blog.URL == "" {
		return m, nil
	}
	url := item.blog.URL
	return m, func() tea.Msg {
		return clipboardResultMsg{url: url, err: copyTextToClipboard(url)}
	}
}

func (m *Model) applyInitialLoad(msg initialLoadMsg) (tea.Model, tea.Cmd) {
	m.loaded = true
	m.unseen = msg.unseen
	if msg.err != nil {
		// Degrade to an empty blog list; the sidebar stays renderable.
		m.logger.Error("initial load failed", logging.F("err", msg.err))
		m.status = "store unavailable"
		tx := m.nav.SetData(nil, msg.session)
		return m, m.applyTransaction(tx)
	}
	m.status = ""
	setTx := m.nav.SetData(msg.blogs, msg.session)
	setCmd := m.applyTransaction(setTx)
	restoreTx := m.nav.RestoreSelection(msg.navState)
	restoreCmd := m.applyTransaction(restoreTx)
	return m, tea.Batch(setCmd, restoreCmd)
}

func (m *Model) applyStoreEvent(event store.Event) tea.Cmd {
	switch event.Kind {
	case store.EventBlogsChanged:
		tx := m.nav.Reconcile(event.Changes)
		m.logger.Debug("blogs reconciled",
			logging.F("inserts", len(event.Changes.Inserts)),
			logging.F("deletes", len(event.Changes.Deletes)),
			logging.F("seq", tx.Seq))
		return m.applyTransaction(tx)
	case store.EventSessionChanged:
		tx := m.nav.SessionChanged(event.Session)
		return m.applyTransaction(tx)
	case store.EventUnseenChanged:
		// Badge decoration only; the section model never changes shape.
		m.unseen = event.Unseen
		m.refreshSidebar(Transaction{})
		return nil
	case store.EventResync:
		// Events were dropped on our channel; deltas can no longer be
		// trusted, reload the full state.
		m.logger.Warn("store events dropped, resyncing")
		return m.resyncCmd()
	}
	return nil
}

func (m *Model) resyncCmd() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		ctx := context.Background()
		blogs, err := repo.Blogs().List(ctx)
		if err != nil {
			return resyncMsg{err: err}
		}
		session, _, _ := repo.Sessions().GetSession(ctx)
		return resyncMsg{blogs: blogs, session: session}
	}
}

// applyTransaction closes one render transaction: rebuild the sidebar from
// the new snapshot, track the empty state, and kick off the fire-and-forget
// persistence write when the batch carries one.
func (m *Model) applyTransaction(tx Transaction) tea.Cmd {
	m.refreshSidebar(tx)

	m.empty = false
	for _, effect := range tx.Effects {
		if effect.Kind == EffectNothingToShow {
			m.empty = true
		}
	}
	m.content = m.describeSelection()

	if tx.Persist == nil {
		return nil
	}
	state := *tx.Persist
	repo := m.repo
	return func() tea.Msg {
		return navStateSavedMsg{err: repo.NavState().SaveNavState(context.Background(), state)}
	}
}

func (m *Model) refreshSidebar(tx Transaction) {
	snapshot := m.nav.Snapshot()
	badges := sidebarBadges{unseen: m.unseen, comments: m.pendingCommentCounts(snapshot)}
	m.sidebar.Apply(snapshot, badges, tx)
}

// pendingCommentCounts pulls comment badges on demand for sections that
// currently render a Comments row.
func (m *Model) pendingCommentCounts(snapshot *NavSnapshot) map[string]int {
	counts := map[string]int{}
	if snapshot == nil {
		return counts
	}
	ctx := context.Background()
	for _, section := range snapshot.Sections {
		if section.Kind != SectionBlog || section.Blog == nil || len(section.Rows) == 0 {
			continue
		}
		count, err := m.repo.Comments().PendingComments(ctx, section.Blog.ID)
		if err != nil {
			continue
		}
		counts[section.Blog.ID] = count
	}
	return counts
}

// describeSelection builds the content pane for the current selection via a
// presenter; presenters that declare the blog-context capability get the
// owning blog handed to them.
func (m *Model) describeSelection() string {
	snapshot := m.nav.Snapshot()
	if snapshot == nil || snapshot.Selection == nil {
		return ""
	}
	action, blog, ok := ActionAt(snapshot.Sections, *snapshot.Selection)
	if !ok {
		return ""
	}
	presenter := presenterFor(action)
	if accepter, needsBlog := presenter.(blogContextAccepter); needsBlog && blog != nil {
		accepter.AcceptBlogContext(blog)
	}
	if comments, isComments := presenter.(*commentsPresenter); isComments && blog != nil {
		if count, err := m.repo.Comments().PendingComments(context.Background(), blog.ID); err == nil {
			comments.SetPending(count)
		}
	}
	return presenter.Render()
}

func (m *Model) View() tea.View {
	sidebar := m.sidebar.View()
	content := m.contentView()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, dividerStyle.Render(" │ "), content)
	status := statusStyle.Render(m.statusLine())
	return tea.NewView(lipgloss.JoinVertical(lipgloss.Left, body, status))
}

func (m *Model) contentView() string {
	if !m.loaded {
		return emptyStateStyle.Render("Loading…")
	}
	if m.empty {
		return emptyStateStyle.Render("Nothing to show. Connect a blog or sign in.")
	}
	if m.content == "" {
		return emptyStateStyle.Render("Select a row.")
	}
	return m.content
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return m.status
	}
	snapshot := m.nav.Snapshot()
	if snapshot == nil {
		return ""
	}
	if snapshot.Session != nil {
		return "signed in as " + snapshot.Session.Username
	}
	return "signed out"
}

func (m *Model) sidebarWidth() int {
	width := m.width / 3
	if width < minSidebarWidth {
		width = minSidebarWidth
	}
	if width > maxSidebarWidth {
		width = maxSidebarWidth
	}
	return width
}

func (m *Model) loadInitialCmd() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		ctx := context.Background()
		session, _, sessionErr := repo.Sessions().GetSession(ctx)
		blogs, blogsErr := repo.Blogs().List(ctx)
		if blogsErr != nil {
			return initialLoadMsg{session: session, err: blogsErr}
		}
		navState, _ := repo.NavState().LoadNavState(ctx)
		unseen, _ := repo.Notifications().UnseenCount(ctx)
		_ = sessionErr
		return initialLoadMsg{blogs: blogs, session: session, navState: navState, unseen: unseen}
	}
}

func (m *Model) badgeTickCmd() tea.Cmd {
	if m.badgeInterval <= 0 {
		return nil
	}
	return tea.Tick(m.badgeInterval, func(time.Time) tea.Msg {
		return badgeTickMsg{}
	})
}

func (m *Model) waitForEventCmd() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		return storeEventMsg{event: event, ok: ok}
	}
}
