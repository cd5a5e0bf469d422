package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancho-go/ipreverser/internal/app/config"
)

// testHistoryStore runs the behaviour every driver must share against a
// freshly cleared store.
func testHistoryStore(t *testing.T, store HistoryStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.ClearHistory(ctx))
	require.NoError(t, store.Ping(ctx))

	t.Run("empty listing", func(t *testing.T) {
		records, err := store.ListRecent(ctx, HistoryLimit)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("create returns stored record", func(t *testing.T) {
		record, err := store.CreateRecord(ctx, "8.8.4.4", "4.4.8.8")
		require.NoError(t, err)

		assert.NotEmpty(t, record.ID)
		assert.Equal(t, "8.8.4.4", record.Address)
		assert.Equal(t, "4.4.8.8", record.ReversedAddress)
		assert.False(t, record.CreatedAt.IsZero())

		records, err := store.ListRecent(ctx, HistoryLimit)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, record, records[0])
	})

	t.Run("duplicates and degenerate records are kept", func(t *testing.T) {
		require.NoError(t, store.ClearHistory(ctx))

		for range 2 {
			_, err := store.CreateRecord(ctx, "", "")
			require.NoError(t, err)
		}

		records, err := store.ListRecent(ctx, HistoryLimit)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.NotEqual(t, records[0].ID, records[1].ID)
	})

	t.Run("listing is bounded and newest first", func(t *testing.T) {
		require.NoError(t, store.ClearHistory(ctx))

		const total = HistoryLimit + 5
		for i := range total {
			address := fmt.Sprintf("10.0.0.%d", i)
			_, err := store.CreateRecord(ctx, address, address)
			require.NoError(t, err)
		}

		records, err := store.ListRecent(ctx, HistoryLimit)
		require.NoError(t, err)
		require.Len(t, records, HistoryLimit)

		for i, record := range records {
			assert.Equal(t, fmt.Sprintf("10.0.0.%d", total-1-i), record.Address)
			if i > 0 {
				assert.False(t, record.CreatedAt.After(records[i-1].CreatedAt))
			}
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		require.NoError(t, store.ClearHistory(ctx))
		require.NoError(t, store.ClearHistory(ctx))

		records, err := store.ListRecent(ctx, HistoryLimit)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestMemory(t *testing.T) {
	t.Parallel()
	testHistoryStore(t, NewMemory())
}

func TestMemory_ConcurrentCreates(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateRecord(ctx, fmt.Sprintf("1.1.1.%d", i), "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := store.ListRecent(ctx, HistoryLimit)
	require.NoError(t, err)
	assert.Len(t, records, 20)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].CreatedAt.After(records[i-1].CreatedAt))
	}
}

func TestMemory_NonPositiveLimit(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	_, err := store.CreateRecord(context.Background(), "1.2.3.4", "4.3.2.1")
	require.NoError(t, err)

	records, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = store.ListRecent(context.Background(), -1)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInitialize_Memory(t *testing.T) {
	t.Parallel()

	store, err := Initialize(context.Background(), config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)
	assert.NoError(t, store.Close(context.Background()))
}

func TestInitialize_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Initialize(context.Background(), config.StoreConfig{Driver: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}
