package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"clothshop/internal/models"
	"clothshop/internal/repositories"
	"clothshop/internal/webdav"
	"clothshop/internal/webdav/webdavtest"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebDAVRepo(t *testing.T, opts ...repositories.WebDAVOption) (*repositories.WebDAVOrderRepository, *webdavtest.Server) {
	srv := webdavtest.NewServer(t)
	client, err := webdav.NewClient(webdav.Config{
		BaseURL:  srv.BaseURL(),
		Username: srv.Username,
		Password: srv.Password,
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	return repositories.NewWebDAVOrderRepository(client, opts...), srv
}

func TestWebDAVOrderRepository_SaveAndGet(t *testing.T) {
	repo, srv := newWebDAVRepo(t)
	ctx := context.Background()

	order := &models.Order{
		OrderID: "ORD-20250101-101010-deadbeef",
		User:    "student",
		Items:   []models.CartItem{{"id": float64(101), "size": "M", "qty": float64(2)}},
		Total:   998,
		Address: "221B Baker Street",
		Payment: "COD",
		Status:  models.OrderStatusPlaced,
	}
	require.NoError(t, repo.SaveOrder(ctx, order))

	raw, ok := srv.Document("orders/ORD-20250101-101010-deadbeef.json")
	require.True(t, ok)
	var stored map[string]interface{}
	require.NoError(t, jsoniter.Unmarshal(raw, &stored))
	assert.Equal(t, order.OrderID, stored["order_id"])
	assert.Equal(t, "PLACED", stored["status"])

	got, err := repo.GetByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order, got)
}

func TestWebDAVOrderRepository_GetByIDNotFound(t *testing.T) {
	repo, _ := newWebDAVRepo(t)

	got, err := repo.GetByID(context.Background(), "ORD-missing")
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))
}

func TestWebDAVOrderRepository_SaveOrderPutFails(t *testing.T) {
	repo, srv := newWebDAVRepo(t)
	srv.FailWith(http.MethodPut, http.StatusServiceUnavailable)

	err := repo.SaveOrder(context.Background(), &models.Order{OrderID: "ORD-x"})
	var storageErr *webdav.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, http.StatusServiceUnavailable, storageErr.Status)
	// The folder was created and stays created.
	assert.Equal(t, 1, srv.Writes())
}

func TestWebDAVOrderRepository_AppendAndList(t *testing.T) {
	repo, _ := newWebDAVRepo(t)
	ctx := context.Background()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)

	entries := []models.OrderIndexEntry{
		{OrderID: "ORD-1", User: "alice", Total: 10, Count: 1},
		{OrderID: "ORD-2", User: "bob", Total: 20, Count: 2},
		{OrderID: "ORD-3", User: "alice", Total: 30, Count: 3},
		{OrderID: "ORD-4", User: "bob", Total: 40, Count: 4},
		{OrderID: "ORD-5", User: "alice", Total: 50, Count: 5},
	}
	for _, e := range entries {
		require.NoError(t, repo.AppendIndexEntry(ctx, e))
	}

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, all)

	alice, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 3)
	assert.Equal(t, []string{"ORD-1", "ORD-3", "ORD-5"}, []string{alice[0].OrderID, alice[1].OrderID, alice[2].OrderID})
	for _, e := range alice {
		assert.Equal(t, "alice", e.User)
	}

	nobody, err := repo.ListByUser(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, nobody)
}

// Two appends that read the same snapshot before either writes leave only
// one of the entries in the index. This is the accepted lossy behaviour of
// the unserialized read-modify-write.
func TestWebDAVOrderRepository_ConcurrentAppendLosesEntry(t *testing.T) {
	repo, srv := newWebDAVRepo(t)
	ctx := context.Background()

	var arrived sync.WaitGroup
	arrived.Add(2)
	srv.OnGet(func(path string) {
		arrived.Done()
		arrived.Wait()
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.AppendIndexEntry(ctx, models.OrderIndexEntry{OrderID: fmt.Sprintf("ORD-%d", i), User: "alice"})
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	srv.OnGet(nil)
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, []string{"ORD-0", "ORD-1"}, all[0].OrderID)
}

func TestWebDAVOrderRepository_SerializedIndexKeepsAllEntries(t *testing.T) {
	repo, _ := newWebDAVRepo(t, repositories.WithSerializedIndex())
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.AppendIndexEntry(ctx, models.OrderIndexEntry{OrderID: fmt.Sprintf("ORD-%d", i), User: "bob"}))
		}(i)
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func TestWebDAVOrderRepository_IndexReadFailure(t *testing.T) {
	repo, srv := newWebDAVRepo(t)
	srv.FailWith(http.MethodGet, http.StatusBadGateway)

	err := repo.AppendIndexEntry(context.Background(), models.OrderIndexEntry{OrderID: "ORD-1"})
	var storageErr *webdav.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, 0, srv.Writes())
}

func TestWebDAVOrderRepository_Ping(t *testing.T) {
	repo, srv := newWebDAVRepo(t)
	require.NoError(t, repo.Ping(context.Background()))

	srv.FailWith("MKCOL", http.StatusForbidden)
	assert.Error(t, repo.Ping(context.Background()))
}
