package newsletter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenRequest struct {
	method, path, address string
}

func newTestList(t *testing.T, status int) (*MailgunList, *[]seenRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []seenRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		mu.Lock()
		seen = append(seen, seenRequest{method: r.Method, path: r.URL.Path, address: r.FormValue("address")})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"ok","member":{"address":"reader@example.com","subscribed":false}}`))
	}))
	t.Cleanup(srv.Close)

	client := mg.NewMailgun("mg.example.com", "key-test")
	client.SetAPIBase(srv.URL + "/v3")
	l, err := NewMailgunList(client, "news@mg.example.com")
	require.NoError(t, err)
	return l, &seen
}

func TestMailgunList_Subscribe(t *testing.T) {
	l, seen := newTestList(t, http.StatusOK)

	require.NoError(t, l.Subscribe(context.Background(), "reader@example.com"))
	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodPost, (*seen)[0].method)
	assert.Equal(t, "/v3/lists/news@mg.example.com/members", (*seen)[0].path)
	assert.Equal(t, "reader@example.com", (*seen)[0].address)
}

func TestMailgunList_Unsubscribe(t *testing.T) {
	l, seen := newTestList(t, http.StatusOK)

	require.NoError(t, l.Unsubscribe(context.Background(), "reader@example.com"))
	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodPut, (*seen)[0].method)
	assert.Equal(t, "/v3/lists/news@mg.example.com/members/reader@example.com", (*seen)[0].path)
}

func TestMailgunList_UnsubscribeUnknownMember(t *testing.T) {
	l, _ := newTestList(t, http.StatusNotFound)

	assert.NoError(t, l.Unsubscribe(context.Background(), "ghost@example.com"))
}

func TestMailgunList_SubscribeServerError(t *testing.T) {
	l, _ := newTestList(t, http.StatusInternalServerError)

	assert.Error(t, l.Subscribe(context.Background(), "reader@example.com"))
}

func TestNewMailgunList_RequiresListAddress(t *testing.T) {
	_, err := NewMailgunList(mg.NewMailgun("mg.example.com", "key"), "")
	assert.Error(t, err)
}
