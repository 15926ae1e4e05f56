package logsink_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upkeep-sh/upkeep/internal/logsink"
)

func newSink(t *testing.T) *logsink.Sink {
	t.Helper()
	sink, err := logsink.NewSink(logsink.SinkConfig{
		Path: filepath.Join(t.TempDir(), "logs", "run.log"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

func TestNewSink(t *testing.T) {
	tests := map[string]struct {
		config logsink.SinkConfig
		expErr bool
	}{
		"a valid path should create the sink and its directory": {
			config: logsink.SinkConfig{Path: "run.log"},
		},
		"a missing path should fail": {
			config: logsink.SinkConfig{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if test.config.Path != "" {
				test.config.Path = filepath.Join(t.TempDir(), "logs", test.config.Path)
			}

			sink, err := logsink.NewSink(test.config)

			if test.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = sink.Close() })
			assert.Equal(t, test.config.Path, sink.Path())
			assert.FileExists(t, test.config.Path)
		})
	}
}

func TestSinkTailLines(t *testing.T) {
	tests := map[string]struct {
		writes   []string
		tail     int
		expLines []string
	}{
		"an empty sink should return nothing": {
			tail:     10,
			expLines: nil,
		},

		"fewer lines than requested should return them all": {
			writes:   []string{"one\ntwo\n"},
			tail:     10,
			expLines: []string{"one", "two"},
		},

		"more lines than requested should return only the most recent": {
			writes:   []string{"one\ntwo\n", "three\nfour\n"},
			tail:     2,
			expLines: []string{"three", "four"},
		},

		"a line split across writes should be reassembled": {
			writes:   []string{"hel", "lo\nworld\n"},
			tail:     10,
			expLines: []string{"hello", "world"},
		},

		"a trailing unterminated line should count as a line": {
			writes:   []string{"done\nstill going"},
			tail:     10,
			expLines: []string{"done", "still going"},
		},

		"a non positive tail should return nothing": {
			writes:   []string{"one\n"},
			tail:     0,
			expLines: nil,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			sink := newSink(t)
			for _, w := range test.writes {
				_, err := sink.Write([]byte(w))
				require.NoError(t, err)
			}

			got := sink.TailLines(test.tail)

			assert.Equal(t, test.expLines, got)
		})
	}
}

func TestSinkTailLinesLargeBacklog(t *testing.T) {
	sink := newSink(t)
	for i := 1; i <= 500; i++ {
		_, err := fmt.Fprintf(sink, "line %d\n", i)
		require.NoError(t, err)
	}

	got := sink.TailLines(20)

	require.Len(t, got, 20)
	assert.Equal(t, "line 481", got[0])
	assert.Equal(t, "line 500", got[19])
}

func TestSinkPersistsToDisk(t *testing.T) {
	sink := newSink(t)
	_, err := sink.Write([]byte("kept after close\n"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(sink.Path())
	require.NoError(t, err)
	assert.Equal(t, "kept after close\n", string(data))
}

func TestSinkConcurrentReadWrite(t *testing.T) {
	sink := newSink(t)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _ = fmt.Fprintf(sink, "line %d\n", i)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			lines := sink.TailLines(5)
			if len(lines) > 5 {
				t.Errorf("tail returned more lines than requested: %d", len(lines))
				return
			}
		}
	}()

	wg.Wait()
}
