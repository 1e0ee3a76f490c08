package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigStore_SetGet tests round trips through Set and Get.
func TestConfigStore_SetGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))
	require.NoError(t, store.Set("llm.model", "llama3.2"))

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "llama3.2", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

// TestConfigStore_Seed tests that seed values are copied and typed.
func TestConfigStore_Seed(t *testing.T) {
	seed := map[string]any{"analysis.top_n": int64(7), "llm.provider": "openai"}
	store := NewConfigStore(seed)
	seed["llm.provider"] = "gemini"

	assert.Equal(t, 7, store.GetInt("analysis.top_n"))
	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Empty(t, store.GetStringSlice("llm.provider"))
}

// TestConfigStore_Delete tests that deleted keys disappear.
func TestConfigStore_Delete(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("analysis.top_n", 10)

	require.NoError(t, store.Delete("analysis.top_n"))
	require.NoError(t, store.Delete("analysis.top_n"))

	_, ok := store.Get("analysis.top_n")
	assert.False(t, ok)
}

// TestConfigStore_PersistenceNoOps tests the in-memory persistence hooks.
func TestConfigStore_PersistenceNoOps(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

// TestConfigStore_Concurrent tests parallel readers and writers.
func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("analysis.concurrency", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("analysis.concurrency")
		}()
	}
	wg.Wait()

	_, ok := store.Get("analysis.concurrency")
	assert.True(t, ok)
}
