package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilerow/pkg/display"
	"github.com/matzehuels/tilerow/pkg/loader"
)

// frameInterval paces the render loop at roughly 60 frames per second.
const frameInterval = 16 * time.Millisecond

// Browse styles
var (
	browseRowStyle      = lipgloss.NewStyle().Foreground(colorGray)
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseTileStyle     = lipgloss.NewStyle().Foreground(colorDim)
	browseFocusStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorCyan)
	browseZoomStyle     = lipgloss.NewStyle().Foreground(colorWhite)
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in the terminal",
		Long: `Browse loads the catalog and shows its rows while tiles are still arriving.

Keys:
  w / ↑   previous row
  s / ↓   next row
  a / ←   previous tile
  d / →   next tile
  q       quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			logger := newLogger(w, c.Logger.GetLevel())

			s, err := c.openSession(ctx, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			spin := newSpinnerWithContext(ctx, "Fetching catalog...")
			spin.Start()
			res, err := s.loader.Load(ctx)
			spin.Stop()
			if err != nil {
				return err
			}

			model := display.NewModel(res.Rows, s.store, s.cfg.Animation.Display(), logger)
			defer model.Close(res.Completions)

			p := tea.NewProgram(newBrowseModel(model, res), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (the terminal is busy)")
	return cmd
}

// frameMsg drives one animation step.
type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// browseModel is the bubbletea model for the browse session. It is the
// single consumer of the loader's completion channel.
type browseModel struct {
	model  *display.Model
	events *loader.Completions
	bar    progressbar.Model
	last   time.Time
	width  int
	height int
}

func newBrowseModel(model *display.Model, res *loader.Result) browseModel {
	return browseModel{
		model:  model,
		events: res.Completions,
		bar:    progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(40)),
		width:  80,
		height: 24,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nextFrame()
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" || key == "esc" {
			return m, tea.Quit
		}
		// Apply tiles that arrived since the last frame so NextTile clamps
		// against the current count.
		m.model.Tick(m.events, 0)
		switch key {
		case "w", "up":
			m.model.PrevRow()
		case "s", "down":
			m.model.NextRow()
		case "a", "left":
			m.model.PrevTile()
		case "d", "right":
			m.model.NextTile()
		}
	case frameMsg:
		now := time.Time(msg)
		dt := frameInterval.Seconds()
		if !m.last.IsZero() {
			dt = now.Sub(m.last).Seconds()
		}
		m.last = now
		m.model.Tick(m.events, dt)
		return m, nextFrame()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(40, max(10, msg.Width-20))
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(appName))
	b.WriteString("\n\n")

	done, total := m.model.Progress()
	if !m.model.TilesReady() {
		b.WriteString(StyleDim.Render("Loading tiles..."))
		b.WriteString("\n\n")
		pct := 0.0
		if total > 0 {
			pct = float64(done) / float64(total)
		}
		b.WriteString(m.bar.ViewAs(pct))
		b.WriteString("\n\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d/%d rows", done, total)))
		return b.String()
	}

	rows := m.model.Rows()
	first, count := m.visibleRows(len(rows))
	for i := first; i < first+count; i++ {
		b.WriteString(m.renderRow(i, rows[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := fmt.Sprintf("row %d/%d", m.model.SelectedRow()+1, len(rows))
	if done < total {
		status += fmt.Sprintf(" · loading %d/%d", done, total)
	}
	b.WriteString(StyleDim.Render(status + " · w/s rows  a/d tiles  q quit"))
	return b.String()
}

// visibleRows picks the rows the camera is looking at. The viewport
// position is in layout units, one row every TitleHeight+RowHeight.
func (m browseModel) visibleRows(n int) (first, count int) {
	cfg := m.model.Config()
	perRow := cfg.TitleHeight + cfg.RowHeight
	count = min(n, max(1, (m.height-6)/3))
	first = int(math.Round(m.model.Viewport().Position.Y / perRow))
	first = max(0, min(first-count/2, n-count))
	return first, count
}

func (m browseModel) renderRow(i int, r display.Row) string {
	title := r.Title
	if title == "" {
		title = "(untitled)"
	}
	style := browseRowStyle
	if i == m.model.SelectedRow() {
		style = browseSelectedStyle
	}
	line := style.Render(title)
	if r.Degraded {
		line += " " + StyleWarning.Render(iconDegraded)
	}

	const cell = 6
	visible := max(1, (m.width-2)/cell)
	start := int(math.Floor(r.SelectedIndex)) - visible/2
	start = max(0, min(start, len(r.Tiles)-visible))

	var tiles strings.Builder
	for j := start; j < min(len(r.Tiles), start+visible); j++ {
		t := r.Tiles[j]
		label := fmt.Sprintf(" %03d ", j+1)
		switch {
		case t.Border > 0:
			tiles.WriteString(browseFocusStyle.Render(label))
		case t.Scale > 1:
			tiles.WriteString(browseZoomStyle.Render(label))
		default:
			tiles.WriteString(browseTileStyle.Render(label))
		}
		tiles.WriteString(" ")
	}
	if len(r.Tiles) == 0 {
		tiles.WriteString(StyleDim.Render("  no tiles yet"))
	}
	return line + "\n" + tiles.String() + "\n"
}
