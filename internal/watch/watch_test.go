package watch

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Match(t *testing.T) {
	w := &Watcher{Patterns: []string{"**/*.go", "go.mod", "testdata/*.json"}}

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"pkg/dash/aggregator.go", true},
		{"./pkg/x.go", true},
		{"go.mod", true},
		{"pkg/go.mod", false},
		{"testdata/a.json", true},
		{"testdata/deep/a.json", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Match(tt.path), tt.path)
	}
}

func TestWatcher_Relevant_FiltersOps(t *testing.T) {
	w := &Watcher{Root: "/src", Patterns: []string{"**/*.go"}}

	assert.True(t, w.relevant(fsnotify.Event{Name: "/src/a.go", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/src/a.go", Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/src/a.go", Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/src/a.txt", Op: fsnotify.Write}))
}

func TestWatcher_WatchDirs_SkipsHiddenAndHonoursStaticPatterns(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"pkg/a", "pkg/b", ".git/objects", "docs"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	w := &Watcher{Root: root, Patterns: []string{"pkg/**/*.go", "go.mod", "missing/**"}}
	dirs, err := w.watchDirs()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "pkg"),
		filepath.Join(root, "pkg", "a"),
		filepath.Join(root, "pkg", "b"),
		root,
	}, dirs)
}

func TestWatcher_Run_RejectsEmptyAndInvalidPatterns(t *testing.T) {
	noop := func(context.Context, string) error { return nil }

	err := (&Watcher{}).Run(context.Background(), noop)
	require.ErrorIs(t, err, ErrNoPatterns)

	err = (&Watcher{Patterns: []string{"[unclosed"}}).Run(context.Background(), noop)
	require.Error(t, err)
}

func TestWatcher_Run_RerunsOnChange(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "x_test.go")
	require.NoError(t, os.WriteFile(target, []byte("package x\n"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	triggers := make(chan string, 8)
	w := &Watcher{Root: root, Patterns: []string{"**/*.go"}, Debounce: 100 * time.Millisecond}

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, trigger string) error {
			triggers <- trigger
			return nil
		})
	}()

	select {
	case tr := <-triggers:
		assert.Empty(t, tr, "initial run has no trigger")
	case <-ctx.Done():
		t.Fatal("initial run never happened")
	}

	// a burst of writes collapses into one re-run
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("package x\n// edit\n"), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o600))

	select {
	case tr := <-triggers:
		assert.Equal(t, target, tr)
	case <-ctx.Done():
		t.Fatal("change did not trigger a re-run")
	}

	select {
	case tr := <-triggers:
		t.Fatalf("unexpected extra run triggered by %q", tr)
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestCommand_Start_StreamsStdout(t *testing.T) {
	var stderr bytes.Buffer
	p, err := Command{Line: "printf 'one\\ntwo\\n'; echo oops 1>&2", Stderr: &stderr}.Start(context.Background())
	require.NoError(t, err)

	out, err := io.ReadAll(p.Stdout)
	require.NoError(t, err)
	code, err := p.Wait()
	require.NoError(t, err)

	assert.Equal(t, "one\ntwo\n", string(out))
	assert.Equal(t, 0, code)
	assert.Equal(t, "oops\n", stderr.String())
}

func TestCommand_Start_ReportsExitCode(t *testing.T) {
	p, err := Command{Line: "exit 3", Stderr: io.Discard}.Start(context.Background())
	require.NoError(t, err)
	_, _ = io.ReadAll(p.Stdout)

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestCommand_Start_EmptyLine(t *testing.T) {
	_, err := Command{}.Start(context.Background())
	require.ErrorIs(t, err, ErrNoCommand)
}

func TestNotifier_TruncatesAndHonoursNoColor(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf, 20, true)
	n.Changed("pkg/some/very/long/path/file_test.go")
	n.CommandFailed("false", 1)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "File changed: pkg/s…", lines[0])
	assert.NotContains(t, buf.String(), "\033[")
}

func TestNotifier_Colored(t *testing.T) {
	var buf bytes.Buffer
	NewNotifier(&buf, 80, false).Watching([]string{"**/*.go"})
	assert.Contains(t, buf.String(), "\033[36m")
	assert.Contains(t, buf.String(), "Watching **/*.go for changes")
}
