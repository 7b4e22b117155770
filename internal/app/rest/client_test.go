package rest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachchat/internal/app/chat"
	"coachchat/internal/app/rest"
	"coachchat/internal/app/session"
	"coachchat/internal/chattest"
)

func newClient(srv *chattest.Server) (*rest.Client, session.Identity) {
	identity := session.Identity{ID: "S1", Kind: session.KindStudent}
	sess := session.New("test-token", identity)
	return rest.NewClient(srv.URL(), sess, 5*time.Second), identity
}

func TestClientListRooms(t *testing.T) {
	srv := chattest.NewServer()
	defer srv.Close()

	srv.SeedRoom(chat.Room{
		ID:              "room-1",
		CounterpartName: "Coach Ada",
		UnreadCount:     3,
		LastMessage: &chat.LastMessage{
			Body:       "see you tomorrow",
			SenderKind: "trainer",
			SentAt:     time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		},
	})

	client, _ := newClient(srv)

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	assert.Equal(t, "room-1", rooms[0].ID)
	assert.Equal(t, "Coach Ada", rooms[0].CounterpartName)
	assert.Equal(t, 3, rooms[0].UnreadCount)
	require.NotNil(t, rooms[0].LastMessage)
	assert.Equal(t, "see you tomorrow", rooms[0].LastMessage.Body)
}

func TestClientListRoomsFailure(t *testing.T) {
	srv := chattest.NewServer()
	defer srv.Close()
	srv.SetFailListRooms(true)

	client, _ := newClient(srv)

	_, err := client.ListRooms(context.Background())
	require.Error(t, err)
}

func TestClientCreateThenListMessages(t *testing.T) {
	srv := chattest.NewServer()
	defer srv.Close()

	client, identity := newClient(srv)
	ctx := context.Background()

	require.NoError(t, client.CreateMessage(ctx, chat.CreateMessageInput{
		RoomID:     "room-1",
		SenderID:   identity.ID,
		SenderKind: string(identity.Kind),
		Body:       "hello coach",
	}))

	records, err := client.ListMessages(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, "room-1", records[0].RoomID)
	assert.Equal(t, "hello coach", records[0].Body)
	assert.Equal(t, identity.ID, records[0].SenderID)
	assert.Equal(t, "student", records[0].SenderKind)
}

func TestClientCreateMessageFailure(t *testing.T) {
	srv := chattest.NewServer()
	defer srv.Close()
	srv.SetFailCreate(true)

	client, identity := newClient(srv)

	err := client.CreateMessage(context.Background(), chat.CreateMessageInput{
		RoomID:     "room-1",
		SenderID:   identity.ID,
		SenderKind: string(identity.Kind),
		Body:       "hello",
	})
	require.Error(t, err)
}

func TestClientMarkRoomRead(t *testing.T) {
	srv := chattest.NewServer()
	defer srv.Close()

	srv.SeedRoom(chat.Room{ID: "room-1", CounterpartName: "Coach Ada", UnreadCount: 4})

	client, identity := newClient(srv)
	ctx := context.Background()

	require.NoError(t, client.MarkRoomRead(ctx, "room-1", identity))
	assert.Equal(t, 1, srv.MarkReadCalls("room-1"))

	rooms, err := client.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 0, rooms[0].UnreadCount)
}

func TestClientMarkRoomReadFailure(t *testing.T) {
	srv := chattest.NewServer()
	defer srv.Close()
	srv.SetFailMarkRead(true)

	client, identity := newClient(srv)

	err := client.MarkRoomRead(context.Background(), "room-1", identity)
	require.Error(t, err)
}
