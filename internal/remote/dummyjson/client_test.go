package dummyjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/service"
)

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodGet || r.URL.Path != TodosPath || r.URL.RawQuery != "" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchSeedTasks_Success(t *testing.T) {
	body := `{
		"todos": [
			{"id": 1, "todo": "Buy milk", "completed": false, "userId": 26},
			{"id": 2, "todo": "Walk dog", "completed": true, "userId": 48}
		],
		"total": 254, "skip": 0, "limit": 30
	}`
	srv, hits := newTestServer(t, http.StatusOK, body)

	records, err := New(srv.URL, srv.Client(), nil).FetchSeedTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, []service.SeedRecord{
		{ID: 1, Body: "Buy milk", Completed: false, OwnerID: 26},
		{ID: 2, Body: "Walk dog", Completed: true, OwnerID: 48},
	}, records)
}

func TestFetchSeedTasks_BodyKey(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"todos":[{"id":5,"body":"Read","completed":true,"userId":1}],"total":1,"skip":0,"limit":1}`)

	records, err := New(srv.URL, srv.Client(), nil).FetchSeedTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Read", records[0].Body)
	assert.True(t, records[0].Completed)
}

func TestFetchSeedTasks_EmptyList(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"todos":[],"total":0,"skip":0,"limit":30}`)

	records, err := New(srv.URL, srv.Client(), nil).FetchSeedTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchSeedTasks_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"empty body", http.StatusOK, "", service.ErrNoData},
		{"whitespace body", http.StatusOK, "  \n", service.ErrNoData},
		{"not json", http.StatusOK, "<html>", service.ErrDecode},
		{"missing todos", http.StatusOK, `{"total":0}`, service.ErrDecode},
		{"wrong type", http.StatusOK, `{"todos":{"id":1}}`, service.ErrDecode},
		{"no text", http.StatusOK, `{"todos":[{"id":1,"completed":false}]}`, service.ErrDecode},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, service.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)

			_, err := New(srv.URL, srv.Client(), nil).FetchSeedTasks(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchSeedTasks_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil, nil).FetchSeedTasks(context.Background())
	assert.ErrorIs(t, err, service.ErrNetwork)
}

func TestNew_Defaults(t *testing.T) {
	c := New("", nil, nil)
	assert.Equal(t, "https://dummyjson.com/todos", c.URL())

	c = New("http://localhost:9999/", nil, nil)
	assert.Equal(t, "http://localhost:9999/todos", c.URL())
}
