package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/creatorly/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a miniredis-backed store for one slot
func setupTestStore(t *testing.T, slot string) (*Store, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	store := NewStore(NewRedisStorage(client, slot))

	cleanup := func() {
		client.Close()
	}
	return store, mr, cleanup
}

func testItem(productID, variantID string, quantity int) domain.LineItem {
	return domain.LineItem{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		Title:     "T",
		Price:     1000,
	}
}

func TestLoad_EmptySlot(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()

	items := store.Load(context.Background())
	assert.Empty(t, items)
}

func TestLoad_CorruptSlot(t *testing.T) {
	store, mr, cleanup := setupTestStore(t, "s1")
	defer cleanup()

	require.NoError(t, mr.Set(slotKey("s1"), "this is not json"))

	items := store.Load(context.Background())
	assert.Empty(t, items)

	// The next successful write overwrites the corrupt slot.
	require.NoError(t, store.Add(context.Background(), testItem("p1", "v1", 1)))
	data, err := mr.Get(slotKey("s1"))
	require.NoError(t, err)

	var stored []domain.LineItem
	require.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.Len(t, stored, 1)
}

func TestAdd_MergesSameProductAndVariant(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))
	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 3)))

	items := store.Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAdd_DifferentVariantsAreSeparateLines(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 1)))
	require.NoError(t, store.Add(ctx, testItem("p1", "v2", 1)))
	require.NoError(t, store.Add(ctx, testItem("p1", "", 1)))

	items := store.Load(ctx)
	assert.Len(t, items, 3)
}

func TestAdd_ClampsQuantityToOne(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 0)))

	items := store.Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "", 1)))
	require.NoError(t, store.Add(ctx, testItem("p2", "", 1)))
	require.NoError(t, store.Add(ctx, testItem("p1", "", 1))) // merges, keeps position

	items := store.Load(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "p2", items[1].ProductID)
}

func TestSetQuantity_Overwrites(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))
	require.NoError(t, store.SetQuantity(ctx, "p1", "v1", 7))

	items := store.Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))
	require.NoError(t, store.SetQuantity(ctx, "p1", "v1", 0))

	assert.Empty(t, store.Load(ctx))
}

func TestSetQuantity_NegativeRemovesLine(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))
	require.NoError(t, store.SetQuantity(ctx, "p1", "v1", -1))

	assert.Empty(t, store.Load(ctx))
}

func TestSetQuantity_NoMatchIsNoop(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))
	require.NoError(t, store.SetQuantity(ctx, "p9", "v9", 5))

	items := store.Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestRemove(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))
	require.NoError(t, store.Add(ctx, testItem("p2", "", 1)))
	require.NoError(t, store.Remove(ctx, "p1", "v1"))

	items := store.Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestClear(t *testing.T) {
	store, mr, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))
	require.NoError(t, store.Clear(ctx))

	assert.Empty(t, store.Load(ctx))

	// Clearing persists an empty sequence, it does not delete the slot.
	data, err := mr.Get(slotKey("s1"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", data)
}

func TestMutation_NotifiesLocalSubscribers(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx := context.Background()

	ch, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))

	select {
	case items := <-ch:
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
	case <-time.After(time.Second):
		t.Fatal("no local notification received")
	}
}

func TestMutation_PublishesToChangeFeed(t *testing.T) {
	store, _, cleanup := setupTestStore(t, "s1")
	defer cleanup()
	ctx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()

	feed, stop, err := store.ChangeFeed(ctx)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, store.Add(ctx, testItem("p1", "v1", 2)))

	select {
	case payload := <-feed:
		var items []domain.LineItem
		require.NoError(t, json.Unmarshal(payload, &items))
		require.Len(t, items, 1)
		assert.Equal(t, "p1", items[0].ProductID)
	case <-time.After(time.Second):
		t.Fatal("no change feed notification received")
	}
}

func TestStores_SameSlotSharesStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	stores := NewStores(client)
	assert.Same(t, stores.ForSlot("a"), stores.ForSlot("a"))
	assert.NotSame(t, stores.ForSlot("a"), stores.ForSlot("b"))
}
