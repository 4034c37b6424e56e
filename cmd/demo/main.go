package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kass/go-city-index/pkg/cities"
	"github.com/kass/go-city-index/pkg/loader"
	"github.com/kass/go-city-index/pkg/models"
)

const (
	citiesFile = "cities.json"
	floorStep  = 100000
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	statStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))
)

// sortFields is the cycle order for the 's' key
var sortFields = []cities.SortField{
	cities.SortByPopulation,
	cities.SortByName,
	cities.SortByDistrict,
	cities.SortBySubject,
	cities.SortByLat,
	cities.SortByLon,
}

type stage int

const (
	stageLoading stage = iota
	stageBrowsing
	stageFailed
)

type model struct {
	stage   stage
	spinner spinner.Model

	all      []models.City
	loadTime time.Duration
	loadErr  error

	sortIdx int
	reverse bool
	floor   int

	width  int
	height int
}

type loadedMsg struct {
	cities   []models.City
	duration time.Duration
}

type loadFailedMsg struct {
	err error
}

func initialModel() model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		stage:   stageLoading,
		spinner: s,
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadCities(),
	)
}

func loadCities() tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		records, err := loader.Load(citiesFile)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		parsed, err := cities.ParseCities(records)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{cities: parsed, duration: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "+":
			m.floor += floorStep
		case "down", "-":
			m.floor -= floorStep
			if m.floor < 0 {
				m.floor = 0
			}
		case "s":
			m.sortIdx = (m.sortIdx + 1) % len(sortFields)
		case "r":
			m.reverse = !m.reverse
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.all = msg.cities
		m.loadTime = msg.duration
		m.stage = stageBrowsing
		return m, nil

	case loadFailedMsg:
		m.loadErr = msg.err
		m.stage = stageFailed
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🏙 Go City-Index Demo"))
	b.WriteString("\n\n")

	switch m.stage {
	case stageLoading:
		b.WriteString(subtitleStyle.Render("Loading Cities"))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View() + " Reading " + citiesFile + "...\n")

	case stageFailed:
		b.WriteString(errorStyle.Render("Failed to load cities"))
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(m.loadErr.Error()))
		b.WriteString("\n")

	case stageBrowsing:
		b.WriteString(m.renderCityList())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ floor • s sort field • r reverse • q quit"))

	return b.String()
}

func (m model) renderCityList() string {
	field := sortFields[m.sortIdx]

	it, err := cities.NewIterator(m.all, cities.SortBy(field, m.reverse))
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	it.SetMinPopulation(m.floor)
	visible := it.Collect()

	order := "ascending"
	if m.reverse {
		order = "descending"
	}
	header := fmt.Sprintf(
		"Sorted by %s (%s) • population floor %s • %s of %s cities shown",
		statStyle.Render(string(field)),
		order,
		statStyle.Render(fmt.Sprintf("%d", m.floor)),
		statStyle.Render(fmt.Sprintf("%d", len(visible))),
		statStyle.Render(fmt.Sprintf("%d", len(m.all))),
	)

	maxRows := m.height - 12
	if maxRows < 5 {
		maxRows = 5
	}

	var rows strings.Builder
	for i, city := range visible {
		if i >= maxRows {
			rows.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(visible)-maxRows)))
			rows.WriteString("\n")
			break
		}
		rows.WriteString(fmt.Sprintf("%-22s %10d  (%7.3f, %8.3f)  %s\n",
			city.Name, city.Population, city.Lat, city.Lon, city.Subject))
	}
	if len(visible) == 0 {
		rows.WriteString(infoStyle.Render("No cities at or above the current floor"))
		rows.WriteString("\n")
	}

	footer := dimStyle.Render(fmt.Sprintf("loaded in %s", m.loadTime))

	return boxStyle.Render(header+"\n\n"+rows.String()) + footer
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}
