package render_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upkeep-sh/upkeep/internal/board"
	"github.com/upkeep-sh/upkeep/internal/model"
	"github.com/upkeep-sh/upkeep/internal/render"
	"github.com/upkeep-sh/upkeep/internal/termsize"
)

// fakeTailer returns its lines like a log sink would, most recent last.
type fakeTailer struct {
	lines []string
}

func (f fakeTailer) TailLines(n int) []string {
	if n <= 0 || len(f.lines) == 0 {
		return nil
	}
	if len(f.lines) <= n {
		return f.lines
	}
	return f.lines[len(f.lines)-n:]
}

func sixTasks() []model.Task {
	return []model.Task{
		{Key: "refresh", Label: "Repository refresh"},
		{Key: "update", Label: "Package update"},
		{Key: "dist_upgrade", Label: "Distribution upgrade"},
		{Key: "autoremove", Label: "Unneeded package removal"},
		{Key: "flatpak_update", Label: "Flatpak update"},
		{Key: "flatpak_cleanup", Label: "Flatpak cleanup"},
	}
}

func newService(t *testing.T, tasks []model.Task, b *board.Board, sink render.LogTailer, columns, rows int, out *bytes.Buffer) *render.Service {
	t.Helper()
	svc, err := render.NewService(render.ServiceConfig{
		Tasks:    tasks,
		Board:    b,
		Sink:     sink,
		Metrics:  termsize.Fixed(columns, rows),
		Out:      out,
		Interval: time.Second,
	})
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config func() render.ServiceConfig
		expErr bool
	}{
		"a valid config should create the service": {
			config: func() render.ServiceConfig {
				tasks := sixTasks()
				return render.ServiceConfig{
					Tasks: tasks,
					Board: board.New(tasks),
					Sink:  fakeTailer{},
					Out:   &bytes.Buffer{},
				}
			},
		},
		"missing tasks should fail": {
			config: func() render.ServiceConfig {
				return render.ServiceConfig{Board: board.New(sixTasks()), Sink: fakeTailer{}, Out: &bytes.Buffer{}}
			},
			expErr: true,
		},
		"missing board should fail": {
			config: func() render.ServiceConfig {
				return render.ServiceConfig{Tasks: sixTasks(), Sink: fakeTailer{}, Out: &bytes.Buffer{}}
			},
			expErr: true,
		},
		"missing sink should fail": {
			config: func() render.ServiceConfig {
				tasks := sixTasks()
				return render.ServiceConfig{Tasks: tasks, Board: board.New(tasks), Out: &bytes.Buffer{}}
			},
			expErr: true,
		},
		"missing out should fail": {
			config: func() render.ServiceConfig {
				tasks := sixTasks()
				return render.ServiceConfig{Tasks: tasks, Board: board.New(tasks), Sink: fakeTailer{}}
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := render.NewService(test.config())

			if test.expErr {
				require.Error(t, err)
				require.Nil(t, svc)
			} else {
				require.NoError(t, err)
				require.NotNil(t, svc)
			}
		})
	}
}

func TestFrameTerminalSizeBoundaries(t *testing.T) {
	tests := map[string]struct {
		columns     int
		rows        int
		expTooSmall bool
	}{
		"exactly the minimum size should render the summary": {columns: 45, rows: 11},
		"one column less should render only the too small notice": {columns: 44, rows: 11, expTooSmall: true},
		"one row less should render only the too small notice":    {columns: 45, rows: 10, expTooSmall: true},
		"a comfortable size should render the summary":            {columns: 120, rows: 40},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			tasks := sixTasks()
			svc := newService(t, tasks, board.New(tasks), fakeTailer{}, test.columns, test.rows, &bytes.Buffer{})

			frame := svc.Frame()

			assert.Equal(t, test.expTooSmall, frame.TooSmall)
			if test.expTooSmall {
				assert.Empty(t, frame.Summary)
				assert.Empty(t, frame.LogLines)
			} else {
				assert.NotEmpty(t, frame.Summary)
			}
		})
	}
}

func TestFrameLogSpaceBoundary(t *testing.T) {
	// With 6 tasks the summary takes 10 rows, so logRows = rows - 10.
	tests := map[string]struct {
		columns int
		rows    int
		expLog  bool
	}{
		// 6 log rows * 45 columns = 270 cells, below the threshold.
		"not enough cells for the log should render only the summary": {columns: 45, rows: 16, expLog: false},
		// 6 log rows * 50 columns = 300 cells, exactly the threshold.
		"exactly enough cells should render the log": {columns: 50, rows: 16, expLog: true},
		// One log row at minimum height is never enough.
		"minimum terminal size should render only the summary": {columns: 45, rows: 11, expLog: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			tasks := sixTasks()
			sink := fakeTailer{lines: []string{"some", "log", "content"}}
			svc := newService(t, tasks, board.New(tasks), sink, test.columns, test.rows, &bytes.Buffer{})

			frame := svc.Frame()

			require.False(t, frame.TooSmall)
			assert.NotEmpty(t, frame.Summary)
			if test.expLog {
				assert.NotEmpty(t, frame.LogLines)
			} else {
				assert.Empty(t, frame.LogLines)
			}
		})
	}
}

func TestFrameLogTailWrapping(t *testing.T) {
	tasks := sixTasks()

	// 500 log lines on an 80x20 terminal leaves 10 rows for the log.
	lines := make([]string, 0, 500)
	for i := 1; i <= 500; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	svc := newService(t, tasks, board.New(tasks), fakeTailer{lines: lines}, 80, 20, &bytes.Buffer{})

	frame := svc.Frame()

	require.False(t, frame.TooSmall)
	require.Len(t, frame.LogLines, 10)
	assert.Equal(t, "line 491", frame.LogLines[0])
	assert.Equal(t, "line 500", frame.LogLines[9])
	for _, line := range frame.LogLines {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 80)
	}
}

func TestFrameLogHardWrap(t *testing.T) {
	tasks := sixTasks()
	long := strings.Repeat("x", 120)
	svc := newService(t, tasks, board.New(tasks), fakeTailer{lines: []string{long}}, 50, 30, &bytes.Buffer{})

	frame := svc.Frame()

	// 120 chars wrap at 50 columns into 50+50+20, most recent rows last.
	require.Len(t, frame.LogLines, 3)
	assert.Equal(t, strings.Repeat("x", 50), frame.LogLines[0])
	assert.Equal(t, strings.Repeat("x", 50), frame.LogLines[1])
	assert.Equal(t, strings.Repeat("x", 20), frame.LogLines[2])
}

func TestFrameLogWrapDiscardsOldRows(t *testing.T) {
	tasks := sixTasks()
	// 10 log rows available, every line wraps into two rows, so only the
	// last 5 raw lines stay visible.
	lines := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("%02d-", i)+strings.Repeat("y", 100))
	}
	svc := newService(t, tasks, board.New(tasks), fakeTailer{lines: lines}, 80, 20, &bytes.Buffer{})

	frame := svc.Frame()

	require.Len(t, frame.LogLines, 10)
	assert.True(t, strings.HasPrefix(frame.LogLines[0], "06-"))
	assert.True(t, strings.HasPrefix(frame.LogLines[8], "10-"))
}

func TestFrameIdempotent(t *testing.T) {
	tasks := sixTasks()
	b := board.New(tasks)
	require.NoError(t, b.Set("refresh", model.TaskStatusDone))
	require.NoError(t, b.Set("update", model.TaskStatusRunning))
	sink := fakeTailer{lines: []string{"alpha", "beta"}}
	svc := newService(t, tasks, b, sink, 100, 30, &bytes.Buffer{})

	first := svc.Frame()
	second := svc.Frame()

	assert.Equal(t, first, second)
}

func TestFrameSummaryStatuses(t *testing.T) {
	tasks := sixTasks()
	b := board.New(tasks)
	require.NoError(t, b.Set("refresh", model.TaskStatusDone))
	require.NoError(t, b.Set("update", model.TaskStatusFailed))
	require.NoError(t, b.Set("dist_upgrade", model.TaskStatusSkipped))
	svc := newService(t, tasks, b, fakeTailer{}, 100, 30, &bytes.Buffer{})

	frame := svc.Frame()

	assert.Contains(t, frame.Summary, "Repository refresh")
	assert.Contains(t, frame.Summary, "done")
	assert.Contains(t, frame.Summary, "failed")
	assert.Contains(t, frame.Summary, "skipped")
	assert.Contains(t, frame.Summary, "pending")
}

func TestRenderTooSmallOutput(t *testing.T) {
	tasks := sixTasks()
	var out bytes.Buffer
	svc := newService(t, tasks, board.New(tasks), fakeTailer{}, 40, 10, &out)

	svc.Render()

	assert.Contains(t, out.String(), "Terminal too small")
}

func TestRenderOutput(t *testing.T) {
	tasks := sixTasks()
	var out bytes.Buffer
	svc := newService(t, tasks, board.New(tasks), fakeTailer{lines: []string{"refreshing repos"}}, 100, 30, &out)

	svc.Render()

	assert.Contains(t, out.String(), "System maintenance")
	assert.Contains(t, out.String(), "Flatpak cleanup")
	assert.Contains(t, out.String(), "refreshing repos")
}
