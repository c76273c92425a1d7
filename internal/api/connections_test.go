package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/careernet/internal/model"
)

func newTestServer(
	t *testing.T,
	handler http.HandlerFunc,
) (*httptest.Server, *ConnectionsClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewConnectionsClient(NewClient(srv.URL, "test-token"))
}

func TestAcceptConnection(t *testing.T) {
	var gotPath, gotAuth string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{
			"_id": "c1", "status": "accepted",
		})
	})

	conn, err := client.AcceptConnection(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "PUT /connections/c1/accept", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "c1", conn.ID)
	assert.Equal(t, model.ConnectionAccepted, conn.Status)
}

func TestRejectConnection(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/connections/c1/reject", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"_id": "c1", "status": "rejected",
		})
	})

	conn, err := client.RejectConnection(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionRejected, conn.Status)
}

func TestRequestConnectionSendsReceiverID(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u2", body["receiverId"])
		json.NewEncoder(w).Encode(map[string]string{
			"_id": "c9", "status": "pending",
		})
	})

	conn, err := client.RequestConnection(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionPending, conn.Status)
}

func TestAcceptAlreadyActionedMapsToNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Connection request not found",
		})
	})

	_, err := client.AcceptConnection(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestDuplicateRequestMapsToValidationError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Connection request already exists",
		})
	})

	_, err := client.RequestConnection(context.Background(), "u2")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "already exists")
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Invalid token",
		})
	})

	_, err := client.ListMyConnections(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestEmptyTokenFailsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}),
	)
	t.Cleanup(srv.Close)

	client := NewConnectionsClient(NewClient(srv.URL, ""))
	_, err := client.ListSuggestions(context.Background())

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.False(t, called)
}

func TestRemoveConnectionAbsorbsNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	// Removing an already-removed connection succeeds.
	err := client.RemoveConnection(context.Background(), "c1")
	assert.NoError(t, err)
}

func TestRemoveConnectionSurfacesOtherErrors(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Not your connection",
		})
	})

	err := client.RemoveConnection(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestListMyConnections(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connections/my-connections", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"connection": map[string]string{
					"_id":    "c1",
					"status": "accepted",
				},
				"friend": map[string]string{"_id": "u2", "name": "Alice"},
			},
		})
	})

	friends, err := client.ListMyConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "c1", friends[0].Connection.ID)
	assert.Equal(t, model.ConnectionAccepted, friends[0].Connection.Status)
	assert.Equal(t, "Alice", friends[0].Profile.Name)
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	attempts := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{})
	})

	_, err := client.ListSuggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
