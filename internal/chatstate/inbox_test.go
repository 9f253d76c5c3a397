package chatstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"alive-chat/internal/models"
)

func historyMessage(id int64, room, sender, text string, at time.Time) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: room,
		SenderID:       sender,
		Text:           text,
		Kind:           models.KindNormal,
		Mood:           models.MoodNormal,
		CreatedAt:      at,
	}
}

func TestBuildInboxDeduplicatesNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	history := []models.Message{
		historyMessage(5, "room-a", "ana", "latest a", base.Add(4*time.Minute)),
		historyMessage(4, "room-b", "bruno", "latest b", base.Add(3*time.Minute)),
		historyMessage(3, "room-a", "bruno", "older a", base.Add(2*time.Minute)),
		historyMessage(2, "room-c", "cleo", "only c", base.Add(time.Minute)),
		historyMessage(1, "room-b", "ana", "older b", base),
	}

	convs := BuildInbox(history)
	require.Len(t, convs, 3)
	require.Equal(t, "room-a", convs[0].ID)
	require.Equal(t, "latest a", convs[0].LastMessage)
	require.Equal(t, "ana", convs[0].LastSender)
	require.Equal(t, "room-b", convs[1].ID)
	require.Equal(t, "room-c", convs[2].ID)
}

func TestInboxUpsertMovesConversationToFront(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var inbox Inbox
	inbox.Load([]models.Message{
		historyMessage(3, "room-a", "ana", "a", base.Add(2*time.Minute)),
		historyMessage(2, "room-b", "bruno", "b", base.Add(time.Minute)),
		historyMessage(1, "room-c", "cleo", "c", base),
	})

	inbox.Upsert(historyMessage(4, "room-c", "cleo", "fresh", base.Add(3*time.Minute)))

	entries := inbox.Entries()
	require.Equal(t, []string{"room-c", "room-a", "room-b"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	require.Equal(t, "fresh", entries[0].LastMessage)
}

func TestInboxUpsertInsertsUnknownConversation(t *testing.T) {
	var inbox Inbox
	inbox.Upsert(historyMessage(1, "room-new", "ana", "hi", time.Now()))

	entries := inbox.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "room-new", entries[0].ID)
}

func TestInboxAlwaysReflectsMostRecentMessage(t *testing.T) {
	// Replaying a stream of inserts keeps the inbox ordered by last
	// activity descending, matching a rebuild from the full history.
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stream := []models.Message{
		historyMessage(1, "room-a", "ana", "1", base),
		historyMessage(2, "room-b", "bruno", "2", base.Add(time.Minute)),
		historyMessage(3, "room-a", "ana", "3", base.Add(2*time.Minute)),
		historyMessage(4, "room-c", "cleo", "4", base.Add(3*time.Minute)),
		historyMessage(5, "room-b", "bruno", "5", base.Add(4*time.Minute)),
	}

	var inbox Inbox
	for _, m := range stream {
		inbox.Upsert(m)
	}

	newestFirst := make([]models.Message, 0, len(stream))
	for i := len(stream) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, stream[i])
	}

	require.Equal(t, BuildInbox(newestFirst), inbox.Entries())
}
