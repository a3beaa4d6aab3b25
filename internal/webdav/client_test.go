package webdav_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"clothshop/internal/webdav"
	"clothshop/internal/webdav/webdavtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*webdav.Client, *webdavtest.Server) {
	srv := webdavtest.NewServer(t)
	client, err := webdav.NewClient(webdav.Config{
		BaseURL:  srv.BaseURL(),
		Username: srv.Username,
		Password: srv.Password,
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := webdav.NewClient(webdav.Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestClient_Resolve(t *testing.T) {
	client, err := webdav.NewClient(webdav.Config{BaseURL: "https://cloud.example.com/remote.php/dav/files/shop"})
	require.NoError(t, err)

	got, err := client.Resolve("orders/index.json")
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.com/remote.php/dav/files/shop/orders/index.json", got)

	got, err = client.Resolve("orders/")
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.com/remote.php/dav/files/shop/orders/", got)
}

func TestClient_EnsureFolder(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	// Created, then already exists; both succeed.
	require.NoError(t, client.EnsureFolder(ctx, "orders"))
	require.NoError(t, client.EnsureFolder(ctx, "orders/"))
	assert.Equal(t, 1, srv.Writes())

	srv.FailWith("MKCOL", http.StatusForbidden)
	err := client.EnsureFolder(ctx, "orders")
	var storageErr *webdav.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, http.StatusForbidden, storageErr.Status)
	assert.Equal(t, "MKCOL", storageErr.Op)
	assert.Contains(t, storageErr.Body, "injected failure")
}

func TestClient_PutAndGetDocument(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	doc := map[string]interface{}{"order_id": "ORD-1", "address": "12 Gandhi Rd <Pune>", "note": "₹499"}
	require.NoError(t, client.PutDocument(ctx, "orders/ORD-1.json", doc))

	raw, ok := srv.Document("orders/ORD-1.json")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \""), "document should be indented")
	assert.Contains(t, string(raw), "<Pune>")
	assert.Contains(t, string(raw), "₹499")

	var got map[string]interface{}
	require.NoError(t, client.GetDocument(ctx, "orders/ORD-1.json", &got))
	assert.Equal(t, doc, got)

	// Overwrite answers 204 and still succeeds.
	require.NoError(t, client.PutDocument(ctx, "orders/ORD-1.json", doc))
}

func TestClient_GetDocumentAbsent(t *testing.T) {
	client, _ := newTestClient(t)

	var got []interface{}
	err := client.GetDocument(context.Background(), "orders/index.json", &got)
	assert.True(t, errors.Is(err, webdav.ErrNotFound))
	assert.Nil(t, got)
}

func TestClient_StorageErrors(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	srv.FailWith("GET", http.StatusInternalServerError)
	var got interface{}
	err := client.GetDocument(ctx, "orders/index.json", &got)
	var storageErr *webdav.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, http.StatusInternalServerError, storageErr.Status)

	srv.FailWith("PUT", http.StatusInsufficientStorage)
	err = client.PutDocument(ctx, "orders/x.json", map[string]string{"a": "b"})
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, http.StatusInsufficientStorage, storageErr.Status)
	assert.Equal(t, "PUT failed 507: injected failure\n", storageErr.Error())
}

func TestClient_WrongCredentials(t *testing.T) {
	srv := webdavtest.NewServer(t)
	client, err := webdav.NewClient(webdav.Config{BaseURL: srv.BaseURL(), Username: "nc-user", Password: "wrong"})
	require.NoError(t, err)

	err = client.EnsureFolder(context.Background(), "orders")
	var storageErr *webdav.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, http.StatusUnauthorized, storageErr.Status)
}

func TestClient_CanceledContext(t *testing.T) {
	client, srv := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.PutDocument(ctx, "orders/x.json", map[string]string{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, srv.Writes())
}
