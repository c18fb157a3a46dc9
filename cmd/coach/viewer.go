package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mansoorceksport/fitcoach/internal/client"
	"github.com/mansoorceksport/fitcoach/internal/render"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

type viewerKeys struct {
	Next       key.Binding
	Prev       key.Binding
	Regenerate key.Binding
	Save       key.Binding
	Theme      key.Binding
	Quit       key.Binding
}

func (k viewerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Regenerate, k.Save, k.Theme, k.Quit}
}

func (k viewerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Regenerate, k.Save, k.Theme, k.Quit}}
}

var defaultViewerKeys = viewerKeys{
	Next:       key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next section")),
	Prev:       key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "previous section")),
	Regenerate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "regenerate")),
	Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save plan")),
	Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type summaryMsg struct {
	summary *service.PlanSummary
	err     error
}

type statusMsg string

type errMsg struct{ err error }

type viewer struct {
	ctx    context.Context
	client *client.Client

	keys    viewerKeys
	help    help.Model
	spinner spinner.Model
	body    viewport.Model

	summary *service.PlanSummary
	tab     render.Tab
	theme   render.Theme
	width   int
	height  int
	ready   bool
	loading bool
	status  string
	err     error
}

func newViewer(ctx context.Context, c *client.Client) viewer {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return viewer{
		ctx:     ctx,
		client:  c,
		keys:    defaultViewerKeys,
		help:    help.New(),
		spinner: s,
		theme:   render.NewTheme(false),
		width:   termWidth,
		loading: true,
	}
}

func (m viewer) fetchSummary() tea.Msg {
	summary, err := m.client.Summary(m.ctx)
	return summaryMsg{summary: summary, err: err}
}

func (m viewer) regenerate() tea.Msg {
	if _, err := m.client.RegeneratePlan(m.ctx); err != nil {
		return errMsg{err}
	}
	return m.fetchSummary()
}

func (m viewer) toggleTheme() tea.Msg {
	if _, err := m.client.ToggleTheme(m.ctx); err != nil {
		return errMsg{err}
	}
	return m.fetchSummary()
}

func (m viewer) savePlan() tea.Msg {
	if _, err := m.client.SaveCurrentPlan(m.ctx); err != nil {
		return errMsg{err}
	}
	return statusMsg("Plan saved successfully!")
}

func (m viewer) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSummary)
}

func (m viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.body = viewport.New(msg.Width, msg.Height)
			m.ready = true
		}
		m.refreshBody()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = render.Tabs[(int(m.tab)+1)%len(render.Tabs)]
			m.refreshBody()
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.tab = render.Tabs[(int(m.tab)+len(render.Tabs)-1)%len(render.Tabs)]
			m.refreshBody()
			return m, nil
		case m.loading:
			// one request at a time
		case key.Matches(msg, m.keys.Regenerate):
			m.loading, m.status, m.err = true, "Regenerating your plan...", nil
			return m, tea.Batch(m.spinner.Tick, m.regenerate)
		case key.Matches(msg, m.keys.Theme):
			m.loading, m.err = true, nil
			return m, tea.Batch(m.spinner.Tick, m.toggleTheme)
		case key.Matches(msg, m.keys.Save):
			return m, m.savePlan
		}

	case summaryMsg:
		m.loading, m.status = false, ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.summary = msg.summary
		m.theme = render.NewTheme(msg.summary.DarkMode)
		m.refreshBody()
		return m, nil

	case statusMsg:
		m.status, m.err = string(msg), nil
		return m, nil

	case errMsg:
		m.loading, m.status, m.err = false, "", msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m *viewer) refreshBody() {
	if !m.ready {
		return
	}
	m.body.Width = m.width
	m.body.Height = max(m.height-lipgloss.Height(m.header())-3, 1)
	if m.summary == nil {
		m.body.SetContent("")
		return
	}
	m.body.SetContent(render.Body(m.summary.FitnessPlan, m.tab, m.width, m.theme))
	m.body.GotoTop()
}

func (m viewer) header() string {
	if m.summary == nil {
		return m.theme.Title.Render("AI Fitness Coach")
	}
	return render.Summary(m.summary, m.width, m.theme) + "\n\n" + render.TabBar(m.tab, m.theme)
}

func (m viewer) footer() string {
	var line string
	switch {
	case m.err != nil:
		line = m.theme.Error.Render("Error: " + errorMessage(m.err))
	case m.loading:
		status := m.status
		if status == "" {
			status = "Loading..."
		}
		line = m.spinner.View() + " " + status
	case m.status != "":
		line = m.theme.Subtle.Render(m.status)
	}
	return strings.TrimRight(line+"\n"+m.help.View(m.keys), "\n")
}

func (m viewer) View() string {
	if !m.ready {
		return m.spinner.View() + " Loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.header(), m.body.View(), m.footer())
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func runView(ctx context.Context, args []string) error {
	if err := newFlagSet("view").Parse(args); err != nil {
		return err
	}
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newViewer(ctx, c), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
