package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/collagefm/pkg/collage"
	"github.com/matzehuels/collagefm/pkg/lastfm"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickerModel - interactive collage setup
// =============================================================================

// pickerStep is one question of the picker.
type pickerStep int

const (
	stepPeriod pickerStep = iota
	stepLayout
	stepDone
)

// layoutChoice is a template and variant; an empty Variant means random.
type layoutChoice struct {
	GridSize int
	Variant  string
}

func (c layoutChoice) String() string {
	v := "random variant"
	if c.Variant != "" {
		v = "variant " + c.Variant
	}
	return fmt.Sprintf("%d×%d · %s", c.GridSize, c.GridSize, v)
}

// PickerModel is the bubbletea model behind generate --interactive. It asks
// for the chart period and then for a template.
type PickerModel struct {
	Periods []string
	Layouts []layoutChoice

	Step    pickerStep
	Cursor  int
	Period  string
	Layout  layoutChoice
	Aborted bool
}

// NewPickerModel lists every period and every template variant of the
// catalog, each template also offered with a random variant.
func NewPickerModel() PickerModel {
	m := PickerModel{
		Periods: []string{
			lastfm.PeriodWeek, lastfm.PeriodMonth, lastfm.Period3Months,
			lastfm.Period6Months, lastfm.Period12Months, lastfm.PeriodOverall,
		},
	}
	for _, size := range collage.GridSizes() {
		l, err := collage.Lookup(size)
		if err != nil {
			continue
		}
		m.Layouts = append(m.Layouts, layoutChoice{GridSize: size})
		for _, v := range l.Variants() {
			m.Layouts = append(m.Layouts, layoutChoice{GridSize: size, Variant: v})
		}
	}
	return m
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < m.options()-1 {
			m.Cursor++
		}
	case "enter":
		switch m.Step {
		case stepPeriod:
			m.Period = m.Periods[m.Cursor]
			m.Step, m.Cursor = stepLayout, 0
		case stepLayout:
			m.Layout = m.Layouts[m.Cursor]
			m.Step = stepDone
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PickerModel) options() int {
	if m.Step == stepPeriod {
		return len(m.Periods)
	}
	return len(m.Layouts)
}

func (m PickerModel) View() string {
	if m.Step == stepDone {
		return ""
	}

	var b strings.Builder
	title, items := "Select Period", m.Periods
	if m.Step == stepLayout {
		title = "Select Layout"
		items = make([]string, len(m.Layouts))
		for i, l := range m.Layouts {
			items[i] = l.String()
		}
	}

	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, item := range items {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + item))
		} else {
			b.WriteString(listNormalStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}
	if m.Step == stepLayout {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("period: " + m.Period))
		b.WriteString("\n")
	}
	return b.String()
}

// runPicker shows the picker and returns the final model.
func runPicker() (PickerModel, error) {
	final, err := tea.NewProgram(NewPickerModel()).Run()
	if err != nil {
		return PickerModel{}, err
	}
	return final.(PickerModel), nil
}
