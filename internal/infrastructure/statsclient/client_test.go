package statsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"srtmon/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsBody = `{
  "status": "ok",
  "publishers": {
    "publish/live/feed1": {
      "bitrate": 5943,
      "bytesRcvDrop": 1316,
      "bytesRcvLoss": 2632,
      "mbpsBandwidth": 141.54,
      "mbpsRecvRate": 5.943,
      "msRcvBuf": 1996,
      "pktRcvDrop": 1,
      "pktRcvLoss": 2,
      "rtt": 0.356,
      "uptime": 264
    }
  }
}`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchDecodesSnapshot(t *testing.T) {
	srv := serve(t, http.StatusOK, statsBody)

	snapshot, err := NewClient(srv.Client()).Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", snapshot.Status)
	p, ok := snapshot.Publisher("publish/live/feed1")
	require.True(t, ok)
	assert.Equal(t, domain.PublisherStats{
		Bitrate:       5943,
		BytesRcvDrop:  1316,
		BytesRcvLoss:  2632,
		MbpsBandwidth: 141.54,
		MbpsRecvRate:  5.943,
		MsRcvBuf:      1996,
		PktRcvDrop:    1,
		PktRcvLoss:    2,
		RTT:           0.356,
		Uptime:        264,
	}, p)
}

func TestClient_FetchIgnoresStatusCode(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `{"status":"error","publishers":{}}`)

	snapshot, err := NewClient(nil).Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "error", snapshot.Status)
	assert.Empty(t, snapshot.Publishers)
}

func TestClient_FetchMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "html error page", body: "<html>502 Bad Gateway</html>"},
		{name: "truncated", body: `{"status": "ok", "publishers": {`},
		{name: "counter is not a number", body: `{"publishers":{"s":{"pktRcvDrop":"many"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)

			snapshot, err := NewClient(srv.Client()).Fetch(context.Background(), srv.URL)

			assert.Nil(t, snapshot)
			assert.ErrorIs(t, err, domain.ErrMalformedStats)
		})
	}
}

func TestClient_FetchUnreachable(t *testing.T) {
	srv := serve(t, http.StatusOK, statsBody)
	url := srv.URL
	srv.Close()

	_, err := NewClient(nil).Fetch(context.Background(), url)

	assert.ErrorIs(t, err, domain.ErrStatsUnavailable)
}

func TestClient_FetchInvalidURL(t *testing.T) {
	_, err := NewClient(nil).Fetch(context.Background(), "://nope")

	assert.ErrorIs(t, err, domain.ErrStatsUnavailable)
}

func TestClient_FetchHonorsCanceledContext(t *testing.T) {
	srv := serve(t, http.StatusOK, statsBody)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(nil).Fetch(ctx, srv.URL)

	assert.ErrorIs(t, err, domain.ErrStatsUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
