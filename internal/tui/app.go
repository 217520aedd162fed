// Package tui provides the interactive Bubble Tea loan dashboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/loanlens/loanlens/internal/cli"
	"github.com/loanlens/loanlens/internal/config"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"
	"github.com/loanlens/loanlens/internal/predict"
	"github.com/loanlens/loanlens/internal/tui/components"
	"github.com/loanlens/loanlens/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// LoadFunc loads the dataset, reporting partition progress.
type LoadFunc func(progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports partition parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// Options configures the dashboard.
type Options struct {
	DataPath  string
	Load      LoadFunc
	Predictor *predict.Service
	// Setup runs the first-run wizard after the data loads.
	Setup bool
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	dataPath string
	data     *model.Dataset
	load     pipeline.LoadResult
	loaded   bool
	loadErr  error
	loadTime time.Duration
	dash     dashboard

	predictor *predict.Service
	pred      predictState

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
	setupErr  error

	// Loading: channel-based progress subscription
	loadFn      LoadFunc
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	scrollStep       = 3
)

const (
	tabOverview = iota
	tabTimeline
	tabPerformance
	tabFinancial
	tabPredict
)

// NewApp creates the dashboard model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		dataPath:  opts.DataPath,
		loadFn:    opts.Load,
		predictor: opts.Predictor,
		pred:      newPredictState(),
		needSetup: opts.Setup,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.loadFn, a.loadSub),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.pred.form != nil {
			a.pred.form = a.pred.form.WithWidth(components.LayoutRow(a.contentWidth(), 2)[0])
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scroll = max(0, a.scroll-scrollStep)
		case tea.MouseButtonWheelDown:
			a.scroll += scrollStep
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					return a.switchTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.load = *msg.Result
		a.data = msg.Result.Dataset
		a.dash = newDashboard(a.data)

		if a.needSetup {
			cfg, err := config.Load()
			if err != nil {
				cfg = config.DefaultConfig()
			}
			if cfg.General.DataPath == "" {
				cfg.General.DataPath = a.dataPath
			}
			a.setupVals = NewSetupValues(cfg)
			a.setupForm = NewSetupForm(a.data.Len(), a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case PredictionMsg:
		a.pred.running = false
		a.pred.err = msg.Err
		if msg.Err == nil {
			p := msg.Prediction
			a.pred.result = &p
			a.pred.applicant = msg.Applicant
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.) to an active form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.pred.form != nil && a.pred.editing {
		return a.updatePredictForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.loadErr != nil {
		if key == "q" || key == "esc" {
			return a, tea.Quit
		}
		return a, nil
	}

	// First-run setup wizard intercepts all keys.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// The prediction form owns the keyboard while editing; esc leaves it.
	if a.activeTab == tabPredict && a.pred.editing {
		if key == "esc" {
			a.pred.editing = false
			a.pred.form = nil
			return a, nil
		}
		return a.updatePredictForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "left":
		return a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case "right", "tab":
		return a.switchTab((a.activeTab + 1) % len(components.Tabs))
	case "j", "down":
		a.scroll++
		return a, nil
	case "k", "up":
		a.scroll = max(0, a.scroll-1)
		return a, nil
	case "g":
		a.scroll = 0
		return a, nil
	}

	if a.activeTab == tabFinancial {
		switch key {
		case "[", "h":
			a.dash.selectCondition(a.data, a.dash.selected-1)
			return a, nil
		case "]", "l", "c":
			a.dash.selectCondition(a.data, a.dash.selected+1)
			return a, nil
		}
	}

	if a.activeTab == tabPredict && a.predictor != nil {
		switch key {
		case "e", "enter":
			return a.startForm()
		case "n":
			a.pred = newPredictState()
			return a.startForm()
		}
	}

	if len(key) == 1 {
		if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
			return a.switchTab(tab)
		}
	}
	return a, nil
}

// switchTab activates tab; entering Predict opens the form.
func (a App) switchTab(tab int) (tea.Model, tea.Cmd) {
	if tab == a.activeTab {
		return a, nil
	}
	a.activeTab = tab
	a.scroll = 0
	if tab == tabPredict && a.predictor != nil && a.pred.result == nil && !a.pred.running {
		return a.startForm()
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupErr = saveSetup(a.setupVals)
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewLoadError()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(5, a.height)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  loanlens needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Focus).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ loanlens"))
	b.WriteString(subtitleStyle.Render(" · Loan Analytics"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing partitions\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading dataset..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoadError() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Error).
		Background(t.Surface).
		Padding(1, 3)
	errStyle := lipgloss.NewStyle().Foreground(t.Error).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	body := errStyle.Render("Could not load dataset") + "\n\n" +
		dimStyle.Render(a.loadErr.Error()) + "\n\n" +
		dimStyle.Render("Press q to quit")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Focus).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o t p f d", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Scroll"},
			{"g", "Back to top"},
		}},
		{"Financial", []struct{ key, desc string }{
			{"[ ]", "Previous / Next loan condition"},
		}},
		{"Predict", []struct{ key, desc string }{
			{"e Enter", "Edit applicant"},
			{"n", "New applicant"},
			{"Esc", "Leave the form"},
		}},
		{"General", []struct{ key, desc string }{
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	hints := "[?]help  [q]uit"
	switch a.activeTab {
	case tabFinancial:
		hints += "  [ ]condition"
	case tabPredict:
		if a.pred.editing {
			hints = "[esc]leave form  [ctrl+c]quit"
		}
	}
	info := fmt.Sprintf("%s loans · %.1fs", cli.FormatNumber(int64(a.data.Len())), a.loadTime.Seconds())
	if a.setupErr != nil {
		info = "config not saved: " + a.setupErr.Error()
	}
	statusBar := components.RenderStatusBar(w, hints, info)

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabTimeline:
		content = a.renderTimelineTab(cw)
	case tabPerformance:
		content = a.renderPerformanceTab(cw)
	case tabFinancial:
		content = a.renderFinancialTab(cw)
	case tabPredict:
		content = a.renderPredictTab(cw)
	}

	content = scrollLines(content, a.scroll, contentH)
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(load LoadFunc, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			result, err := load(progressFn)
			sub <- DataLoadedMsg{Result: result, LoadTime: time.Since(start), Err: err}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// scrollLines drops the first offset lines, clamped so the last page stays full.
func scrollLines(s string, offset, height int) string {
	if offset <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	offset = min(offset, max(0, len(lines)-height))
	return strings.Join(lines[offset:], "\n")
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
