package notify

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamHandler(t *testing.T) {
	reg := NewRegistry()
	ts := httptest.NewServer(StreamHandler(reg))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"?uri="+url.QueryEscape(petsURI), nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	rd := bufio.NewReader(res.Body)
	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, ": subscribed "), line)
	require.Equal(t, 1, reg.Len())

	reg.Notify("content://other/pets")
	reg.Notify(itemURI)

	event := readEvent(t, rd)
	assert.Equal(t, "change", event["event"])
	assert.Equal(t, itemURI, event["data"])
	assert.NotEmpty(t, event["id"])

	cancel()
	assert.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamHandler_BadDescendants(t *testing.T) {
	reg := NewRegistry()

	rec := httptest.NewRecorder()
	StreamHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/changes?descendants=maybe", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, reg.Len())
}

// readEvent lee un evento SSE completo (hasta la línea vacía).
func readEvent(t *testing.T, rd *bufio.Reader) map[string]string {
	t.Helper()

	out := map[string]string{}
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if len(out) == 0 {
				continue
			}
			return out
		}
		k, v, _ := strings.Cut(line, ": ")
		out[k] = v
	}
}
