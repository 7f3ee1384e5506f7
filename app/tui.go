package app

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"

	"doc-inspector/config"
	"doc-inspector/inspect"
	"doc-inspector/record"
)

// Styles (shared with CLI usage/version output)
var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7"))

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

type model struct {
	// Input
	path string
	opts config.Options

	// Result and paging (one page per section)
	rec           *record.DocumentRecord
	sections      []section
	currentPage   int
	contentScroll int
	err           error

	// Session and timing
	inspectTime time.Duration
	quitting    bool
	loading     bool

	// Window size
	width  int
	height int

	memUsageText string // e.g., " • RAM: XXX MB"
}

func newModel(path string, opts config.Options) model {
	return model{path: path, opts: opts, loading: true}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.runInspect(), m.memUsageTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.rec != nil {
			m.sections = buildSections(m.rec, m.boxWidth())
		}
		return m, nil

	case tea.KeyMsg:
		// While loading, only allow quit
		if m.loading {
			switch msg.String() {
			case "q", "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "n", "right", "l", "tab":
			if m.currentPage < len(m.sections)-1 {
				m.currentPage++
			}
			m.contentScroll = 0
			return m, nil
		case "p", "left", "h", "shift+tab":
			if m.currentPage > 0 {
				m.currentPage--
			}
			m.contentScroll = 0
			return m, nil
		case "enter", " ":
			if m.currentPage < len(m.sections)-1 {
				m.currentPage++
				m.contentScroll = 0
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "home":
			m.currentPage = 0
			m.contentScroll = 0
			return m, nil
		case "end":
			m.currentPage = max(len(m.sections)-1, 0)
			m.contentScroll = 0
			return m, nil
		case "up", "k":
			m.contentScroll = max(m.contentScroll-1, 0)
			return m, nil
		case "down", "j":
			m.contentScroll++
			return m, nil
		case "pgup":
			m.contentScroll = max(m.contentScroll-5, 0)
			return m, nil
		case "pgdown":
			m.contentScroll += 5
			return m, nil
		}
		return m, nil

	case inspectResultMsg:
		m.loading = false
		m.inspectTime = msg.elapsed
		m.err = msg.err
		m.rec = msg.rec
		if msg.rec != nil {
			m.sections = buildSections(msg.rec, m.boxWidth())
		}
		m.currentPage = 0
		return m, nil

	case memUsageMsg:
		m.memUsageText = msg.Text
		return m, m.memUsageTick()
	}
	return m, nil
}

func (m model) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 30
	}

	if m.quitting {
		return "Goodbye!\n"
	}

	var headerLines []string
	headerLines = append(headerLines, "")
	headerLines = append(headerLines, headerStyle.Render("doc-inspector v"+version))
	headerLines = append(headerLines, "")
	headerLines = append(headerLines, subHeaderStyle.Render(wrapTextWithIndent("📄 File: ", sanitize(m.path, false), width-4)))

	status := fmt.Sprintf("⏱️ Inspected in %s%s", m.inspectTime.Round(time.Millisecond), m.memUsageText)
	if m.loading {
		status = "⏳ Inspecting..." + m.memUsageText
	} else if m.rec != nil {
		headerLines = append(headerLines, successStyle.Render(fmt.Sprintf("📋 Format: %s • %s", m.rec.Format, inspect.HumanSize(m.rec.FileSize))))
	}
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Render(status))

	if m.rec != nil && len(m.rec.Indicators) > 0 {
		headerLines = append(headerLines, canaryWarning(len(m.rec.Indicators)))
	}

	header := strings.Join(headerLines, "\n")
	headerHeight := strings.Count(header, "\n") + 1

	var title, boxContent string
	switch {
	case m.loading:
		boxContent = "Inspecting..."
	case m.err != nil:
		boxContent = errorStyle.Render("Error: " + sanitize(m.err.Error(), false))
	case len(m.sections) == 0:
		boxContent = "Nothing to show."
	default:
		s := m.sections[m.currentPage]
		title = subHeaderStyle.Render(fmt.Sprintf("%s (%d of %d)", s.Title, m.currentPage+1, len(m.sections)))
		boxContent = s.Body
	}

	footerHeight := 1
	titleHeight := 1
	chromeHeight := 4
	contentHeight := height - headerHeight - titleHeight - footerHeight - chromeHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	window := scrollWindow(boxContent, m.contentScroll, contentHeight)

	parts := []string{header, title, appStyle.Width(width - 4).Height(contentHeight).Render(window)}

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Render("🔚 'ENTER' next • 'q' quit • p: previous • n: next • ↑/↓ scroll")
	parts = append(parts, footer)

	return strings.Join(parts, "\n")
}

// boxWidth is the room left for section bodies inside the bordered box.
func (m model) boxWidth() int {
	width := m.width
	if width <= 0 {
		width = 120
	}
	return max(width-10, 20)
}

// scrollWindow returns the height lines of content starting at scroll,
// clamped so the last page stays full.
func scrollWindow(content string, scroll, height int) string {
	lines := strings.Split(content, "\n")
	maxStart := 0
	if len(lines) > height {
		maxStart = len(lines) - height
	}
	start := min(max(scroll, 0), maxStart)
	end := min(start+height, len(lines))
	return strings.Join(lines[start:end], "\n")
}

func (m model) runInspect() tea.Cmd {
	path, opts := m.path, m.opts
	return func() tea.Msg {
		start := time.Now()
		rec, err := inspect.Inspect(path, opts)
		return inspectResultMsg{rec: rec, err: err, elapsed: time.Since(start)}
	}
}

func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(max(width-prefixWidth, 1)).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}

func (m model) memUsageTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		heap, rss := sampleMemory()
		return memUsageMsg{Text: fmt.Sprintf(" • Heap %5.1f MB • Peak RSS %5.1f MB", float64(heap)/(1024*1024), float64(rss)/(1024*1024))}
	})
}

func sampleMemory() (heap, rss uint64) {
	var rusage unix.Rusage
	_ = unix.Getrusage(unix.RUSAGE_SELF, &rusage)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, uint64(rusage.Maxrss * 1024) // KB to bytes
}

// Messages for TUI updates
type inspectResultMsg struct {
	rec     *record.DocumentRecord
	err     error
	elapsed time.Duration
}

type memUsageMsg struct {
	Text string
}
