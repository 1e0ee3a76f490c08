package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStopWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), StopWordsFile)
	content := "# product words\nSolibri, Model\n\n  checker # trailing comment\n,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	words, err := ReadStopWords(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"solibri", "model", "checker"}, words)

	_, err = ReadStopWords(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, os.IsNotExist(err))
}

// recorder collects watcher callbacks.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) record(words []string) {
	r.mu.Lock()
	r.calls = append(r.calls, words)
	r.mu.Unlock()
}

func (r *recorder) last() ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil, 0
	}
	return r.calls[len(r.calls)-1], len(r.calls)
}

// TestWatchStopWords tests initial load, hot reload and removal.
func TestWatchStopWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StopWordsFile)
	require.NoError(t, os.WriteFile(path, []byte("alpha\n"), 0600))

	rec := &recorder{}
	w, err := WatchStopWords(path, rec.record)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	words, n := rec.last()
	require.Equal(t, 1, n)
	assert.Equal(t, []string{"alpha"}, words)

	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\n"), 0600))
	assert.Eventually(t, func() bool {
		words, _ := rec.last()
		return len(words) == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Unrelated files in the directory are ignored
	time.Sleep(50 * time.Millisecond)
	_, before := rec.last()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))
	time.Sleep(50 * time.Millisecond)
	_, after := rec.last()
	assert.Equal(t, before, after)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		words, n := rec.last()
		return n > after && words == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatchStopWords_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StopWordsFile)

	rec := &recorder{}
	w, err := WatchStopWords(path, rec.record)
	require.NoError(t, err)

	_, n := rec.last()
	assert.Zero(t, n)

	require.NoError(t, os.WriteFile(path, []byte("gamma"), 0600))
	assert.Eventually(t, func() bool {
		words, _ := rec.last()
		return len(words) == 1 && words[0] == "gamma"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatchStopWords_MissingDirectory(t *testing.T) {
	_, err := WatchStopWords(filepath.Join(t.TempDir(), "nope", StopWordsFile), func([]string) {})
	assert.Error(t, err)
}
