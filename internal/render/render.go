// Package render draws the live maintenance dashboard: a summary box with the
// status of every task plus a tail of the combined command output, adapted to
// the current terminal geometry on every frame.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/upkeep-sh/upkeep/internal/board"
	"github.com/upkeep-sh/upkeep/internal/log"
	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/termsize"
)

const (
	// minRows and minColumns are the smallest terminal the dashboard fits in.
	minRows    = 11
	minColumns = 45
	// logMinCharacters is the minimum amount of terminal cells left over
	// after the summary for the log tail to be worth drawing.
	logMinCharacters = 300

	// summaryExtraRows is what the summary adds on top of one row per task:
	// two border rows, the title row and a blank separator row.
	summaryExtraRows = 4

	defaultColumns = 80
	defaultRows    = 24

	tooSmallMessage = "Terminal too small, resize to at least 45x11."
)

// Palette shared with the rest of the CLI output.
var (
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))

	titleStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

func statusStyle(status model.TaskStatus) lipgloss.Style {
	switch status {
	case model.TaskStatusRunning:
		return runningStyle
	case model.TaskStatusDone:
		return doneStyle
	case model.TaskStatusSkipped:
		return skippedStyle
	case model.TaskStatusFailed:
		return failedStyle
	default:
		return pendingStyle
	}
}

// LogTailer knows how to return the last lines of the run log.
type LogTailer interface {
	TailLines(n int) []string
}

// Frame is a point-in-time rendering of the dashboard. It is recomputed on
// every render and never persisted.
type Frame struct {
	Columns  int
	Rows     int
	TooSmall bool
	Summary  string
	LogLines []string
}

// ServiceConfig is the configuration for the renderer service.
type ServiceConfig struct {
	Tasks    []model.Task
	Board    *board.Board
	Sink     LogTailer
	Metrics  termsize.Metrics
	Out      io.Writer
	Interval time.Duration
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("tasks are required")
	}
	if c.Board == nil {
		return fmt.Errorf("board is required")
	}
	if c.Sink == nil {
		return fmt.Errorf("sink is required")
	}
	if c.Metrics == nil {
		c.Metrics = termsize.NewStdout()
	}
	if c.Out == nil {
		return fmt.Errorf("out is required")
	}
	if c.Interval == 0 {
		c.Interval = 1 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "render.Service"})
	return nil
}

// Service renders the dashboard, periodically and on demand. It only reads
// the board and the sink, never mutates them.
type Service struct {
	tasks      []model.Task
	board      *board.Board
	sink       LogTailer
	metrics    termsize.Metrics
	out        io.Writer
	termOut    *termenv.Output
	interval   time.Duration
	labelWidth int
	notifyC    chan struct{}
	logger     log.Logger
}

// NewService creates a new renderer service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	labelWidth := 0
	for _, t := range cfg.Tasks {
		if len(t.Label) > labelWidth {
			labelWidth = len(t.Label)
		}
	}

	return &Service{
		tasks:      cfg.Tasks,
		board:      cfg.Board,
		sink:       cfg.Sink,
		metrics:    cfg.Metrics,
		out:        cfg.Out,
		termOut:    termenv.NewOutput(cfg.Out),
		interval:   cfg.Interval,
		labelWidth: labelWidth,
		notifyC:    make(chan struct{}, 1),
		logger:     cfg.Logger,
	}, nil
}

// Frame computes a frame from the current terminal size, board and sink
// state. A resize during the computation is ignored for this single frame,
// the next render re-measures.
func (s *Service) Frame() *Frame {
	columns, rows, err := s.metrics.Size()
	if err != nil || columns <= 0 || rows <= 0 {
		columns, rows = defaultColumns, defaultRows
	}

	frame := &Frame{Columns: columns, Rows: rows}

	if rows < minRows || columns < minColumns {
		frame.TooSmall = true
		return frame
	}

	frame.Summary = s.summary(s.board.Snapshot())

	logRows := rows - (len(s.tasks) + summaryExtraRows)
	if logRows <= 0 || columns*logRows < logMinCharacters {
		return frame
	}

	// Every raw line wraps into at least one row, so the last logRows raw
	// lines always cover logRows rows. Older wrapped rows fall off the top.
	wrapped := make([]string, 0, logRows)
	for _, line := range s.sink.TailLines(logRows) {
		wrapped = append(wrapped, hardWrap(line, columns)...)
	}
	if len(wrapped) > logRows {
		wrapped = wrapped[len(wrapped)-logRows:]
	}
	frame.LogLines = wrapped

	return frame
}

// Render computes the current frame and paints it on the terminal.
func (s *Service) Render() {
	s.paint(s.Frame())
}

// Notify requests an immediate render from the render loop. It never blocks,
// renders already in flight absorb the request.
func (s *Service) Notify() {
	select {
	case s.notifyC <- struct{}{}:
	default:
	}
}

// Loop renders every interval and on every Notify until ctx is cancelled.
func (s *Service) Loop(ctx context.Context) error {
	s.termOut.HideCursor()
	defer s.termOut.ShowCursor()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Render()
		case <-s.notifyC:
			s.Render()
		}
	}
}

func (s *Service) paint(frame *Frame) {
	s.termOut.ClearScreen()

	if frame.TooSmall {
		fmt.Fprintln(s.out, tooSmallMessage)
		return
	}

	fmt.Fprintln(s.out, frame.Summary)
	fmt.Fprintln(s.out)
	for _, line := range frame.LogLines {
		fmt.Fprintln(s.out, line)
	}
}

func (s *Service) summary(statuses map[string]model.TaskStatus) string {
	lines := make([]string, 0, len(s.tasks)+1)
	lines = append(lines, titleStyle.Render("System maintenance"))
	for _, t := range s.tasks {
		status := statuses[t.Key]
		line := fmt.Sprintf("%-*s  %s", s.labelWidth, t.Label, statusStyle(status).Render(string(status)))
		lines = append(lines, line)
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// hardWrap splits a line into chunks of at most width terminal cells,
// breaking mid-token. Width is measured in display cells so wide runes
// never overflow the terminal edge.
func hardWrap(line string, width int) []string {
	if width <= 0 {
		return []string{line}
	}

	var out []string
	var chunk strings.Builder
	chunkWidth := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if chunkWidth > 0 && chunkWidth+rw > width {
			out = append(out, chunk.String())
			chunk.Reset()
			chunkWidth = 0
		}
		chunk.WriteRune(r)
		chunkWidth += rw
	}
	out = append(out, chunk.String())

	return out
}
