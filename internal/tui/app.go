package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/epaper/internal/archive"
	"github.com/matheuskafuri/epaper/internal/browser"
	"github.com/matheuskafuri/epaper/internal/loader"
	"github.com/matheuskafuri/epaper/internal/view"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

// entry is one selectable story on the Home tab, with the failure set its
// image belongs to.
type entry struct {
	story archive.Story
	set   string
}

type App struct {
	newLoader func() *loader.Loader
	ld        *loader.Loader
	status    loader.Status
	res       *archive.Resolver

	home    *view.Layout
	entries []entry
	cards   map[string]*view.Card

	// images holds one failure set per rendered card; probed records which
	// set/title pairs were already checked.
	images map[string]*view.ImageFailures
	probed map[string]bool

	tabs          tabBar
	cursor        int
	focus         focusPane
	previewScroll int

	prober Prober
	open   func(string) error

	width   int
	height  int
	spinner spinner.Model
	err     error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Client loader.Client
	// Prober and Open default to HEAD requests and the desktop browser.
	Prober Prober
	Open   func(string) error
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	if opts.Prober == nil {
		opts.Prober = newHeadProber()
	}
	if opts.Open == nil {
		opts.Open = browser.Open
	}
	client := opts.Client

	a := &App{
		newLoader: func() *loader.Loader { return loader.New(client) },
		prober:    opts.Prober,
		open:      opts.Open,
		spinner:   sp,
	}
	a.reset()
	return a
}

// reset starts over with a fresh loader, as a page reload would.
func (a *App) reset() {
	if a.ld != nil {
		a.ld.Close()
	}
	a.ld = a.newLoader()
	a.status = a.ld.Status()
	a.res = nil
	a.home = nil
	a.entries = nil
	a.cards = make(map[string]*view.Card)
	a.images = make(map[string]*view.ImageFailures)
	a.probed = make(map[string]bool)
	a.tabs = newTabBar()
	a.cursor = 0
	a.focus = focusList
	a.previewScroll = 0
	a.err = nil
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, loadCmd(a.ld))
}

func loadCmd(ld *loader.Loader) tea.Cmd {
	return func() tea.Msg {
		ld.Load(context.Background())
		return archiveLoadedMsg{ld: ld}
	}
}

func openBrowserCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case archiveLoadedMsg:
		if msg.ld != a.ld {
			return a, nil
		}
		a.status = a.ld.Status()
		if a.status.State != loader.Ready {
			return a, nil
		}
		a.res = a.ld.Resolver()
		a.buildHome()
		return a, a.probeVisible()

	case imageFailedMsg:
		if msg.ld != a.ld {
			return a, nil
		}
		if set, ok := a.images[msg.set]; ok {
			set.Fail(msg.title)
		}
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.status.Loading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) buildHome() {
	a.home = view.HomeLayout(a.res)
	a.entries = nil

	fp := a.home.FrontPage
	a.images["home/front-page"] = fp.Images
	if fp.HasHero() {
		a.entries = append(a.entries, entry{story: *fp.Hero, set: "home/front-page"})
		for _, s := range fp.Related {
			a.entries = append(a.entries, entry{story: s, set: "home/front-page"})
		}
	}

	add := func(prefix string, cards []*view.Card) {
		for _, c := range cards {
			set := prefix + string(c.Category)
			a.images[set] = c.Images
			for _, s := range c.Stories {
				a.entries = append(a.entries, entry{story: s, set: set})
			}
		}
	}
	add("home/", a.home.Cards)
	add("strip/", a.home.Strip)
}

// card returns the category tab's card, building it on first view.
func (a *App) card(key string) *view.Card {
	if c, ok := a.cards[key]; ok {
		return c
	}
	cat, _ := archive.ParseCategory(key)
	c := view.NewCard(a.res, cat, "", false)
	a.cards[key] = c
	a.images["tab/"+key] = c.Images
	return c
}

// visible lists the stories on the current tab with their failure set.
func (a *App) visible() []entry {
	key := a.tabs.current().key
	if key == homeTab {
		return a.entries
	}
	c := a.card(key)
	out := make([]entry, len(c.Stories))
	for i, s := range c.Stories {
		out[i] = entry{story: s, set: "tab/" + key}
	}
	return out
}

// probeVisible checks each unprobed image on the current tab once.
func (a *App) probeVisible() tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range a.visible() {
		if !a.showImage(a.images[e.set], e.story) {
			continue
		}
		k := e.set + "\x00" + e.story.Title
		if a.probed[k] {
			continue
		}
		a.probed[k] = true
		cmds = append(cmds, probeCmd(a.prober, a.ld, e.set, e.story.Title, e.story.ImageURL))
	}
	return tea.Batch(cmds...)
}

func (a *App) showImage(f *view.ImageFailures, s archive.Story) bool {
	return f != nil && f.ShouldRender(s)
}

func (a *App) selected() *entry {
	v := a.visible()
	if a.cursor < 0 || a.cursor >= len(v) {
		return nil
	}
	return &v[a.cursor]
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "r":
		if a.status.Loading() {
			return a, nil
		}
		a.reset()
		return a, a.Init()
	}

	if a.status.State != loader.Ready {
		return a, nil
	}

	switch msg.String() {
	case "right", "l":
		a.tabs.next()
		return a, a.switchedTab()
	case "left", "h":
		a.tabs.prev()
		return a, a.switchedTab()
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.visible())-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.tabs.current().key == homeTab {
			return a, nil
		}
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "m":
		if a.tabs.current().key == homeTab && a.home.FrontPage.Summary != nil {
			a.home.FrontPage.Summary.Toggle()
		}
		return a, nil
	case "o", "enter":
		if e := a.selected(); e != nil {
			return a, openBrowserCmd(a.open, e.story.URL)
		}
		return a, nil
	}

	return a, nil
}

func (a *App) switchedTab() tea.Cmd {
	a.cursor = 0
	a.previewScroll = 0
	a.focus = focusList
	return a.probeVisible()
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  epaper")
	}

	header := a.renderHeader()
	banner := a.renderBanner()

	if a.status.State != loader.Ready {
		hints := "q quit"
		if a.status.State == loader.Failed {
			hints = "r reload  q quit"
		}
		return a.withBottomBar(lipgloss.JoinVertical(lipgloss.Left, header, banner), hints)
	}

	tabs := a.tabs.render(a.width)
	used := lipgloss.Height(header) + lipgloss.Height(banner) + lipgloss.Height(tabs) + 1
	contentHeight := a.height - used - 2 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	var content, hints string
	if a.tabs.current().key == homeTab {
		content = lipgloss.NewStyle().Padding(0, 1).Render(a.renderHome(a.width-2, contentHeight+2))
		hints = "←/→ section  j/k move  m more  o open  r reload  q quit"
	} else {
		content = a.renderSection(contentHeight)
		hints = "←/→ section  j/k move  tab focus  o open  r reload  q quit"
	}

	status := renderStatusBar(len(a.visible()), a.tabs.current().label, a.width, hints)
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, banner, tabs, content, status)
}

func (a *App) renderHeader() string {
	headerLeft := headerStyle.Render("EPAPER")
	headerRight := ""
	if a.status.State == loader.Ready {
		headerRight = headerDateStyle.Render(view.FormatDate(a.status.Date) + " ")
	}
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	return headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight
}

func (a *App) renderBanner() string {
	b := view.NewBanner(a.status)
	switch {
	case a.status.Loading():
		return bannerStyle.Render(a.spinner.View() + " " + b.Text)
	case b.Error:
		return bannerErrorStyle.Render(b.Text)
	}
	out := bannerStyle.Render(b.Text)
	if b.Fallback != "" {
		out += "\n" + bannerFallbackStyle.Render(b.Fallback)
	}
	return out
}

func (a *App) renderSection(contentHeight int) string {
	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1 // gap

	c := a.card(a.tabs.current().key)
	listContent := renderList(c.Stories, a.cursor, contentHeight, listWidth-4, c.EmptyMessage())

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	var story *archive.Story
	showImage := false
	if e := a.selected(); e != nil {
		story = &e.story
		showImage = a.showImage(c.Images, e.story)
	}
	previewContent := renderPreview(story, showImage, previewWidth-4, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar("", hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if a.height > 1 && len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
