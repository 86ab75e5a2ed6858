package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/gogoair/flightchat/internal/ingest"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// progressUpdateMsg carries chunk counts from the ingestion callback.
type progressUpdateMsg struct {
	done  int
	total int
}

// ingestDoneMsg signals the end of the ingestion run.
type ingestDoneMsg struct {
	result *ingest.Result
	err    error
}

// progressModel is the bubbletea model for ingestion progress.
type progressModel struct {
	progress progress.Model
	theme    Theme
	done     int
	total    int
	result   *ingest.Result
	err      error
	finished bool
	quitting bool
}

// newProgressModel creates a new progress model.
func newProgressModel() progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return progressModel{progress: prog, theme: defaultTheme}
}

// Init returns the initial command.
func (m progressModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case progressUpdateMsg:
		m.done = msg.done
		m.total = msg.total
		return m, nil

	case ingestDoneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.finished || m.quitting {
		return m.finalView()
	}

	if m.total == 0 {
		return "Embedding schema chunks...\n"
	}

	pct := float64(m.done) / float64(m.total)
	status := m.theme.statusStyle().Render("[ingesting]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d chunks", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to abort")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nIngestion interrupted.\n")
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Ingestion failed: %s\n", m.err))
	}
	if m.result != nil {
		output := m.theme.completedStyle().Render("✓ Completed") + "\n"
		output += fmt.Sprintf("  Chunks stored: %d/%d\n", m.result.ChunksInserted, m.result.ChunksTotal)
		if len(m.result.Errors) > 0 {
			output += m.theme.errorStyle().Render(fmt.Sprintf("Warnings (%d):\n", len(m.result.Errors)))
			for _, e := range m.result.Errors {
				output += fmt.Sprintf("  • %s\n", e)
			}
		}
		return output
	}
	return m.theme.completedStyle().Render("✓ Completed\n")
}

// RunIngestProgress runs fn in the background and renders a progress bar fed
// by its callback. Returns the ingestion result once fn finishes.
func RunIngestProgress(fn func(onProgress func(done, total int)) (*ingest.Result, error)) (*ingest.Result, error) {
	p := tea.NewProgram(newProgressModel())

	go func() {
		result, err := fn(func(done, total int) {
			p.Send(progressUpdateMsg{done: done, total: total})
		})
		p.Send(ingestDoneMsg{result: result, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			return nil, fmt.Errorf("ingestion interrupted")
		}
		return m.result, m.err
	}
	return nil, nil
}
