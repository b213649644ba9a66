package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"conceptsearch/internal/config"
	"conceptsearch/internal/eventbus"
	"conceptsearch/internal/resource"
	"conceptsearch/internal/search"
	"conceptsearch/internal/ui/logic"
	"conceptsearch/internal/ui/state"
	"conceptsearch/internal/ui/viewmodels"
	"conceptsearch/internal/ui/views"
)

// defaultWidth and defaultHeight size the list until the first WindowSizeMsg
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// purger is implemented by resources that cache responses
type purger interface {
	Purge()
}

// Model represents the application state
type Model struct {
	ctx        context.Context
	bus        eventbus.EventBus
	config     *config.Config
	resource   resource.ProfileResource
	controller *search.Controller

	state      *state.AppState
	viewModel  *viewmodels.ViewModel
	renderer   *views.Renderer
	helpRender *HelpRenderer
	pager      *PagerOps
	keys       keyMap

	textInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	help      help.Model

	// cancels aborts the in-flight request of each intent
	cancels map[search.Intent]context.CancelFunc
}

// NewModel creates a new UI model searching res. bus may be nil.
func NewModel(ctx context.Context, cfg *config.Config, res resource.ProfileResource, bus eventbus.EventBus) *Model {
	appState := state.NewAppState(cfg.ProfileTypes, cfg.DefaultType)
	appState.Width = defaultWidth
	appState.Height = defaultHeight

	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = fmt.Sprintf("type %d+ characters to filter by label", cfg.Search.MinQueryLength)
	ti.CharLimit = 200
	ti.Width = views.ContentWidth(defaultWidth) - lipgloss.Width(ti.Prompt) - 1
	ti.Focus()

	vp := viewport.New(views.ContentWidth(defaultWidth), views.ListHeight(defaultHeight))
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	h := help.New()
	h.Width = defaultWidth

	m := &Model{
		ctx:        ctx,
		bus:        bus,
		config:     cfg,
		resource:   res,
		controller: search.NewController(bus, appState.CurrentType(), cfg.Search.MinQueryLength),
		state:      appState,
		viewModel:  viewmodels.NewViewModel(appState, cfg),
		renderer:   views.NewRenderer(),
		helpRender: NewHelpRenderer(),
		pager:      NewPagerOps(nil),
		keys:       defaultKeyMap(),
		textInput:  ti,
		viewport:   vp,
		spinner:    sp,
		help:       h,
		cancels:    make(map[search.Intent]context.CancelFunc),
	}
	m.viewModel.SetHelp(h)
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// SearchState returns the current search state
func (m *Model) SearchState() search.State {
	return m.controller.State()
}

// Init starts the cursor blink, the spinner and the initial unfiltered search
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.issue(m.controller.Search()))
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.help.Width = msg.Width
		m.viewModel.SetHelp(m.help)
		m.textInput.Width = views.ContentWidth(msg.Width) - lipgloss.Width(m.textInput.Prompt) - 1
		m.viewport.Width = views.ContentWidth(msg.Width)
		m.viewport.Height = views.ListHeight(msg.Height)
		m.refreshList(true)
		return m, m.checkScroll()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, tea.Batch(cmd, m.checkScroll())

	case profilesMsg:
		return m, m.handleProfiles(msg.resp)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerClosedMsg:
		if msg.err != nil {
			slog.Error("pager failed", "error", msg.err)
			m.state.StatusMessage = fmt.Sprintf("Pager failed: %v", msg.err)
		}
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil
	}

	// Cursor blink and anything else belongs to the input
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the UI
func (m *Model) View() string {
	s := m.controller.State()
	vs := m.viewModel.BuildViewState(s, m.textInput.View(), m.viewport.View(), m.spinner.View(), m.keys)
	return m.renderer.Render(vs)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.state.StatusMessage = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelAll()
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveSelection(-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		return m.moveSelection(m.pageSize())
	case key.Matches(msg, m.keys.Home):
		return m.moveSelection(-m.state.SelectedIndex)
	case key.Matches(msg, m.keys.End):
		return m.moveSelection(len(m.controller.State().Profiles))
	case key.Matches(msg, m.keys.NextType):
		return m.switchType(1)
	case key.Matches(msg, m.keys.PrevType):
		return m.switchType(-1)
	case key.Matches(msg, m.keys.Open):
		return m.openSelected()
	case key.Matches(msg, m.keys.Retry):
		return m.issue(m.controller.Retry())
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.Help):
		return m.showInPager(m.helpRender.RenderHelpContent(m.keys, m.controller.State().MinQueryLength))
	}

	before := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if value := m.textInput.Value(); value != before {
		m.controller.SetQuery(value)
		return tea.Batch(cmd, m.issue(m.controller.Search()))
	}
	return cmd
}

func (m *Model) handleProfiles(resp search.Response) tea.Cmd {
	outcome := m.controller.Apply(resp)
	if outcome == search.Stale {
		return nil
	}

	if cancel, ok := m.cancels[resp.Request.Intent]; ok {
		cancel()
		delete(m.cancels, resp.Request.Intent)
	}

	if outcome == search.Failed {
		return nil
	}

	if resp.Request.Intent == search.IntentSearch {
		m.state.SelectedIndex = 0
		m.refreshList(false)
		m.viewport.GotoTop()
	} else {
		m.refreshList(false)
	}
	return m.checkScroll()
}

func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case eventbus.ConfigSavedEvent:
		m.state.StatusMessage = fmt.Sprintf("Saved %s", e.Path)
	case eventbus.ErrorEvent:
		m.state.StatusMessage = e.Message
	}
}

// issue starts req in the background. A search aborts everything in flight, an
// extend only a previous extend.
func (m *Model) issue(req *search.Request) tea.Cmd {
	if req == nil {
		return nil
	}

	if req.Intent == search.IntentSearch {
		m.cancelAll()
	} else if cancel, ok := m.cancels[req.Intent]; ok {
		cancel()
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancels[req.Intent] = cancel

	r := *req
	res := m.resource
	return func() tea.Msg {
		page, err := res.Query(ctx, r.Params)
		return profilesMsg{resp: search.Response{Request: r, Page: page, Err: err}}
	}
}

func (m *Model) cancelAll() {
	for intent, cancel := range m.cancels {
		cancel()
		delete(m.cancels, intent)
	}
}

// checkScroll asks for the next page once the list is scrolled to the bottom
func (m *Model) checkScroll() tea.Cmd {
	if !search.AtBottom(m.viewport.YOffset, m.viewport.Height, m.viewport.TotalLineCount(), m.config.Search.ScrollThreshold) {
		return nil
	}
	return m.issue(m.controller.Extend())
}

func (m *Model) moveSelection(delta int) tea.Cmd {
	count := len(m.controller.State().Profiles)
	m.state.SelectedIndex = logic.MoveSelection(m.state.SelectedIndex, delta, count)
	m.refreshList(true)
	return m.checkScroll()
}

func (m *Model) pageSize() int {
	opts := m.viewModel.ListOptions(m.controller.State())
	return logic.PageSize(opts.ItemHeight(), m.viewport.Height)
}

// refreshList re-renders the loaded profiles into the viewport. With follow set
// the viewport is moved so the cursor stays visible.
func (m *Model) refreshList(follow bool) {
	s := m.controller.State()
	opts := m.viewModel.ListOptions(s)
	m.state.ClampSelection(len(s.Profiles))

	m.viewport.SetContent(m.renderer.RenderProfileList(s.Profiles, m.state.SelectedIndex, opts))
	if follow {
		m.viewport.SetYOffset(logic.EnsureVisible(
			m.state.SelectedIndex,
			opts.ItemHeight(),
			m.viewport.YOffset,
			m.viewport.Height,
			m.viewport.TotalLineCount(),
		))
	}
}

func (m *Model) switchType(delta int) tea.Cmd {
	from := m.state.CurrentType()
	to := m.state.CycleType(delta)
	if to == from {
		return nil
	}
	return m.issue(m.controller.SetProfileType(to))
}

// reload drops cached pages and searches again
func (m *Model) reload() tea.Cmd {
	if p, ok := m.resource.(purger); ok {
		p.Purge()
		m.state.StatusMessage = "Cache cleared"
	}
	return m.issue(m.controller.Search())
}

func (m *Model) openSelected() tea.Cmd {
	s := m.controller.State()
	if len(s.Profiles) == 0 {
		return nil
	}
	m.state.ClampSelection(len(s.Profiles))
	return m.showInPager(m.renderer.RenderProfileDetail(s.Profiles[m.state.SelectedIndex]))
}

// showInPager returns a command that pages content with ov
func (m *Model) showInPager(content string) tea.Cmd {
	pager := m.pager
	return func() tea.Msg {
		return pagerClosedMsg{err: pager.Show(content)}
	}
}
