// Package theme maps loan concepts to colors for the dashboard, the CLI
// gauge and the exported charts.
package theme

import "github.com/charmbracelet/lipgloss"

// Gauge fills are shared by every theme.
const (
	GaugeGoodHex = "#FFA07A" // light salmon, above the threshold
	GaugeBadHex  = "#FA8072" // salmon, at or below it
)

// Theme holds the color roles of one look.
type Theme struct {
	Name string

	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and panels
	SurfaceHover lipgloss.Color // active tab, selected row
	Border       lipgloss.Color
	Focus        lipgloss.Color // overlay borders
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	AccentDim    lipgloss.Color
	Warning      lipgloss.Color
	Error        lipgloss.Color

	LoanCount  lipgloss.Color // loans issued per day, weekday and grade counts
	LoanAmount lipgloss.Color // money totals per day
	Grade      lipgloss.Color
	Condition  lipgloss.Color // condition share bars
	GoodLoan   lipgloss.Color
	BadLoan    lipgloss.Color
	Loading    lipgloss.Color // progress bar below half
	GaugeGood  lipgloss.Color
	GaugeBad   lipgloss.Color

	// Terms colors the per-term series in term order; Term cycles it.
	Terms []lipgloss.Color
}

// palette is the raw swatch set a theme is derived from.
type palette struct {
	bg, surface, hover, border        string
	dim, muted, text                  string
	accent, accentBright, accentDim   string
	blue, orange, green, red, magenta string
	yellow, cyan                      string
}

func newTheme(name string, p palette) Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return Theme{
		Name:         name,
		Background:   c(p.bg),
		Surface:      c(p.surface),
		SurfaceHover: c(p.hover),
		Border:       c(p.border),
		Focus:        c(p.accent),
		TextDim:      c(p.dim),
		TextMuted:    c(p.muted),
		TextPrimary:  c(p.text),
		Accent:       c(p.accent),
		AccentBright: c(p.accentBright),
		AccentDim:    c(p.accentDim),
		Warning:      c(p.orange),
		Error:        c(p.red),

		LoanCount:  c(p.blue),
		LoanAmount: c(p.green),
		Grade:      c(p.magenta),
		Condition:  c(p.orange),
		GoodLoan:   c(p.green),
		BadLoan:    c(p.red),
		Loading:    c(p.cyan),
		GaugeGood:  c(GaugeGoodHex),
		GaugeBad:   c(GaugeBadHex),

		Terms: []lipgloss.Color{c(p.blue), c(p.orange), c(p.green), c(p.magenta), c(p.yellow), c(p.cyan)},
	}
}

var (
	FlexokiDark = newTheme("flexoki-dark", palette{
		bg: "#100F0F", surface: "#1C1B1A", hover: "#282726", border: "#403E3C",
		dim: "#575653", muted: "#878580", text: "#FFFCF0",
		accent: "#3AA99F", accentBright: "#5BC8BE", accentDim: "#1A3533",
		blue: "#4385BE", orange: "#DA702C", green: "#879A39", red: "#D14D41", magenta: "#CE5D97",
		yellow: "#D0A215", cyan: "#24837B",
	})

	CatppuccinMocha = newTheme("catppuccin-mocha", palette{
		bg: "#1E1E2E", surface: "#313244", hover: "#45475A", border: "#585B70",
		dim: "#6C7086", muted: "#A6ADC8", text: "#CDD6F4",
		accent: "#89B4FA", accentBright: "#B4D0FB", accentDim: "#293147",
		blue: "#89B4FA", orange: "#FAB387", green: "#A6E3A1", red: "#F38BA8", magenta: "#F5C2E7",
		yellow: "#F9E2AF", cyan: "#94E2D5",
	})

	TokyoNight = newTheme("tokyo-night", palette{
		bg: "#1A1B26", surface: "#24283B", hover: "#343A52", border: "#565F89",
		dim: "#565F89", muted: "#A9B1D6", text: "#C0CAF5",
		accent: "#7AA2F7", accentBright: "#A9C1FF", accentDim: "#252B3F",
		blue: "#7AA2F7", orange: "#FF9E64", green: "#9ECE6A", red: "#F7768E", magenta: "#BB9AF7",
		yellow: "#E0AF68", cyan: "#7DCFFF",
	})

	// Terminal sticks to the ANSI 16 colors.
	Terminal = newTheme("terminal", palette{
		bg: "0", surface: "0", hover: "8", border: "8",
		dim: "8", muted: "7", text: "15",
		accent: "6", accentBright: "14", accentDim: "0",
		blue: "4", orange: "3", green: "2", red: "1", magenta: "5",
		yellow: "11", cyan: "6",
	})
)

// Active is the theme the TUI renders with.
var Active = FlexokiDark

// All lists the selectable themes in display order.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Print is the hex theme PNG export draws with, whatever Active is.
var Print = FlexokiDark

func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns the named theme, or FlexokiDark when unknown.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

func SetActive(name string) {
	Active = ByName(name)
}

// Term returns the color of the i-th term series.
func (t Theme) Term(i int) lipgloss.Color {
	return t.Terms[i%len(t.Terms)]
}

// Gauge returns the gauge fill for a prediction on either side of the
// threshold.
func (t Theme) Gauge(good bool) lipgloss.Color {
	if good {
		return t.GaugeGood
	}
	return t.GaugeBad
}

// ConditionColor returns the color of a loan condition label.
func (t Theme) ConditionColor(good bool) lipgloss.Color {
	if good {
		return t.GoodLoan
	}
	return t.BadLoan
}
