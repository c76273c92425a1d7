package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionIDUnmarshalString(t *testing.T) {
	var id ConnectionID
	require.NoError(t, json.Unmarshal([]byte(`"abc123"`), &id))
	assert.Equal(t, "abc123", id.String())
}

func TestConnectionIDUnmarshalObject(t *testing.T) {
	var id ConnectionID
	require.NoError(
		t, json.Unmarshal([]byte(`{"_id":"abc123","status":"pending"}`), &id),
	)
	assert.Equal(t, "abc123", id.String())
}

func TestConnectionIDUnmarshalObjectPlainID(t *testing.T) {
	var id ConnectionID
	require.NoError(t, json.Unmarshal([]byte(`{"id":"xyz789"}`), &id))
	assert.Equal(t, "xyz789", id.String())
}

func TestConnectionIDUnmarshalInvalid(t *testing.T) {
	var id ConnectionID
	assert.Error(t, json.Unmarshal([]byte(`42`), &id))
}

func TestNotificationDecodeBothWireShapes(t *testing.T) {
	// The backend sometimes returns the connection reference as a bare
	// id string and sometimes as a populated document. Both must decode
	// to the same normalized id.
	flat := []byte(`{
		"_id": "n1",
		"type": "connection_request",
		"message": "Alice wants to connect",
		"read": false,
		"connectionId": "c1"
	}`)
	populated := []byte(`{
		"_id": "n2",
		"type": "connection_request",
		"message": "Alice wants to connect",
		"read": false,
		"connectionId": {"_id": "c1", "status": "pending"}
	}`)

	var a, b Notification
	require.NoError(t, json.Unmarshal(flat, &a))
	require.NoError(t, json.Unmarshal(populated, &b))

	assert.Equal(t, a.ConnectionID, b.ConnectionID)
	assert.True(t, a.IsConnectionRequest())
	assert.True(t, b.IsConnectionRequest())
}

func TestIsConnectionRequestNeedsConnectionID(t *testing.T) {
	n := Notification{ID: "n1", Type: NotificationConnectionRequest}
	assert.False(t, n.IsConnectionRequest())

	n.ConnectionID = "c1"
	assert.True(t, n.IsConnectionRequest())

	accepted := Notification{
		ID: "n2", Type: NotificationConnectionAccepted, ConnectionID: "c1",
	}
	assert.False(t, accepted.IsConnectionRequest())
}
