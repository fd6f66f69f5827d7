package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

type recorded struct {
	Method string
	Path   string
	Body   string
}

// fakeES answers like an Elasticsearch node and records every request.
func fakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{URL: srv.URL, Index: "products_test"})
	require.NoError(t, err)
	return c, &reqs
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	q := buildQuery("lemon", 20, 10)
	assert.Equal(t, 20, q["from"])
	assert.Equal(t, 10, q["size"])

	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"multi_match"`)
	assert.Contains(t, string(b), `"query":"lemon"`)
	assert.Contains(t, string(b), `"is_available":true`)
}

func TestSearch_ReturnsIDsInOrder(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	c, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":3},"hits":[{"_id":"`+a.String()+`"},{"_id":"not-a-uuid"},{"_id":"`+b.String()+`"}]}}`)
	})

	total, ids, err := c.Search(context.Background(), "tart", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	require.Len(t, *reqs, 1)
	assert.Equal(t, "/products_test/_search", (*reqs)[0].Path)
	assert.Contains(t, (*reqs)[0].Body, `"tart"`)
}

func TestSearch_ErrorStatus(t *testing.T) {
	t.Parallel()

	c, _ := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"parse failure"}`)
	})

	_, _, err := c.Search(context.Background(), "tart", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse failure")
}

func TestIndexAndDeleteProduct(t *testing.T) {
	t.Parallel()

	c, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = io.WriteString(w, `{}`)
	})

	p := models.NewProduct("Cheesecake", "baked", "Cakes", decimal.RequireFromString("18.50"), 3)
	p.Ingredients = models.StringList{"cream cheese"}
	require.NoError(t, c.IndexProduct(context.Background(), p))
	require.NoError(t, c.DeleteProduct(context.Background(), p.ID))

	require.Len(t, *reqs, 2)
	assert.Equal(t, "/products_test/_doc/"+p.ID.String(), (*reqs)[0].Path)
	assert.Contains(t, (*reqs)[0].Body, `"price":18.5`)
	assert.Contains(t, (*reqs)[0].Body, `"cream cheese"`)
	assert.Equal(t, http.MethodDelete, (*reqs)[1].Method)
}

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	c, reqs := fakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	})

	require.NoError(t, c.EnsureIndex(context.Background()))
	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodPut, (*reqs)[1].Method)
	assert.True(t, strings.Contains((*reqs)[1].Body, `"scaled_float"`))
}

func TestNewClient_RequiresURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	require.Error(t, err)
}
