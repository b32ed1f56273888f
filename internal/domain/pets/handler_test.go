package pets_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"pets-gateway/internal/adapters/storage/memory"
	"pets-gateway/internal/domain/pets"
	"pets-gateway/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (chi.Router, *memory.Store, *notify.Registry) {
	store := memory.NewStore()
	reg := notify.NewRegistry()
	svc := pets.NewService(store, pets.MustMatcher(pets.DefaultAuthority), reg)

	r := chi.NewRouter()
	pets.RegisterRoutes(r, svc)
	return r, store, reg
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store, *notify.Registry) {
	t.Helper()

	r, store, reg := newTestRouter()
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, store, reg
}

func send(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, b
}

func TestHandler_CreateAcceptsGenderName(t *testing.T) {
	ts, store, _ := newTestServer(t)

	res, body := send(t, http.MethodPost, ts.URL+"/pets", `{"name":"Rex","gender":"male","weight":10,"breed":null}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	assert.Equal(t, "/pets/1", res.Header.Get("Location"))

	var created struct {
		URI string `json:"uri"`
		ID  int64  `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "content://com.example.android.pets/pets/1", created.URI)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 1, store.Len())

	res, body = send(t, http.MethodGet, ts.URL+"/pets/1", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "vnd.android.cursor.item/com.example.android.pets/pets", res.Header.Get("X-Resource-Type"))

	var row map[string]any
	require.NoError(t, json.Unmarshal(body, &row))
	assert.Equal(t, "Rex", row["name"])
	assert.EqualValues(t, 1, row["gender"])
	assert.EqualValues(t, 10, row["weight"])
	assert.Nil(t, row["breed"])
}

func TestHandler_ValidationErrors(t *testing.T) {
	ts, store, _ := newTestServer(t)

	cases := []struct {
		body   string
		field  string
		reason string
	}{
		{`{"name":"","gender":1}`, "name", "empty"},
		{`{"name":"Max","gender":5}`, "gender", "out-of-range"},
		{`{"name":"Max","gender":"dog"}`, "gender", "wrong-type"},
		{`{"name":"Max","gender":1,"weight":-3}`, "weight", "negative"},
		{`{"name":"Max","gender":1,"_id":4}`, "_id", "immutable"},
	}
	for _, tc := range cases {
		res, body := send(t, http.MethodPost, ts.URL+"/pets", tc.body)
		require.Equal(t, http.StatusBadRequest, res.StatusCode, tc.body)

		var e struct {
			Field  string `json:"field"`
			Reason string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(body, &e))
		assert.Equal(t, tc.field, e.Field, tc.body)
		assert.Equal(t, tc.reason, e.Reason, tc.body)
	}
	assert.Zero(t, store.Len())

	res, _ := send(t, http.MethodPost, ts.URL+"/pets", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = send(t, http.MethodPost, ts.URL+"/pets", `null`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandler_ItemRoutes(t *testing.T) {
	ts, _, reg := newTestServer(t)

	var (
		mu      sync.Mutex
		changes []string
	)
	reg.Register("", true, notify.ObserverFunc(func(uri string) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, uri)
	}))

	send(t, http.MethodPost, ts.URL+"/pets", `{"name":"Luna","gender":2}`)

	res, body := send(t, http.MethodPatch, ts.URL+"/pets/1", `{"weight":12}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"rows_affected":1}`, string(body))

	res, body = send(t, http.MethodPatch, ts.URL+"/pets/1", `{}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"rows_affected":0}`, string(body))

	res, _ = send(t, http.MethodGet, ts.URL+"/pets/abc", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = send(t, http.MethodGet, ts.URL+"/pets/99", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = send(t, http.MethodDelete, ts.URL+"/pets/1", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"rows_affected":1}`, string(body))

	res, body = send(t, http.MethodDelete, ts.URL+"/pets/1", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"rows_affected":0}`, string(body))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"content://com.example.android.pets/pets",
		"content://com.example.android.pets/pets/1",
		"content://com.example.android.pets/pets/1",
	}, changes)
}

func TestHandler_CollectionQuery(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, b := range []string{
		`{"name":"Rex","gender":1,"weight":30}`,
		`{"name":"Luna","gender":2,"weight":12}`,
		`{"name":"Toby","gender":1}`,
	} {
		res, _ := send(t, http.MethodPost, ts.URL+"/pets", b)
		require.Equal(t, http.StatusCreated, res.StatusCode)
	}

	res, body := send(t, http.MethodGet, ts.URL+"/pets?projection=name&where=gender%20%3D%20%3F&arg=1&sort=name%20DESC", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	assert.Equal(t, "content://com.example.android.pets/pets", res.Header.Get("X-Notification-URI"))
	assert.JSONEq(t, `[{"name":"Toby"},{"name":"Rex"}]`, string(body))

	res, _ = send(t, http.MethodGet, ts.URL+"/pets?projection=color", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body = send(t, http.MethodPatch, ts.URL+"/pets?where=weight%20IS%20NULL", `{"weight":5}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"rows_affected":1}`, string(body))

	res, body = send(t, http.MethodDelete, ts.URL+"/pets?where=weight%20%3C%20%3F&arg=20", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"rows_affected":2}`, string(body))

	res, body = send(t, http.MethodGet, ts.URL+"/pets?projection=name", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[{"name":"Rex"}]`, string(body))
}

func TestHandler_BodyTooLarge(t *testing.T) {
	r, store, _ := newTestRouter()

	big := bytes.Repeat([]byte("a"), 2<<20)
	body := `{"name":"` + string(big) + `","gender":1}`
	req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, store.Len())
}
