package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/repository"
)

func newTestLibrary(t *testing.T) (LibraryService, *repository.InMemoryThreadRepository, *repository.InMemoryMediaRepository) {
	t.Helper()
	log := testLog()
	threads := repository.NewInMemoryThreadRepository(log)
	media := repository.NewInMemoryMediaRepository(log)
	return NewLibraryService(threads, media, log), threads, media
}

func seedThread(t *testing.T, threads *repository.InMemoryThreadRepository, userID, prompt string) domain.Thread {
	t.Helper()
	thread, err := threads.AppendTurns(context.Background(), userID, domain.ThreadKindConversation, nil, []domain.Message{
		{Role: domain.MessageRoleUser, Content: prompt},
		{Role: domain.MessageRoleAssistant, Content: "reply"},
	})
	require.NoError(t, err)
	return thread
}

func TestThreadTitleDerivedFromFirstUserMessage(t *testing.T) {
	svc, threads, _ := newTestLibrary(t)

	long := "This prompt is deliberately longer than fifty characters to check truncation"
	thread := seedThread(t, threads, "user-1", long)

	got, err := svc.GetThread(context.Background(), "user-1", thread.ID, domain.ThreadKindConversation)
	require.NoError(t, err)
	assert.Equal(t, domain.DeriveThreadTitle(long), got.Title)
	assert.LessOrEqual(t, len([]rune(got.Title)), 53)
}

func TestListThreadsMostRecentFirst(t *testing.T) {
	svc, threads, _ := newTestLibrary(t)
	ctx := context.Background()

	first := seedThread(t, threads, "user-1", "first")
	time.Sleep(2 * time.Millisecond)
	second := seedThread(t, threads, "user-1", "second")

	list, err := svc.ListThreads(ctx, "user-1", domain.ThreadKindConversation, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestCrossUserThreadAccessIsNotFound(t *testing.T) {
	svc, threads, _ := newTestLibrary(t)
	ctx := context.Background()

	thread := seedThread(t, threads, "user-1", "private")

	_, err := svc.GetThread(ctx, "user-2", thread.ID, domain.ThreadKindConversation)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteThread(ctx, "user-2", thread.ID, domain.ThreadKindConversation)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The owner still sees it
	_, err = svc.GetThread(ctx, "user-1", thread.ID, domain.ThreadKindConversation)
	assert.NoError(t, err)
}

func TestThreadKindsAreIsolated(t *testing.T) {
	svc, threads, _ := newTestLibrary(t)
	ctx := context.Background()

	thread := seedThread(t, threads, "user-1", "a chat thread")

	// A conversation thread is invisible through the code-generation views
	_, err := svc.GetThread(ctx, "user-1", thread.ID, domain.ThreadKindCode)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListThreads(ctx, "user-1", domain.ThreadKindCode, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteThreadRemovesIt(t *testing.T) {
	svc, threads, _ := newTestLibrary(t)
	ctx := context.Background()

	thread := seedThread(t, threads, "user-1", "to delete")

	require.NoError(t, svc.DeleteThread(ctx, "user-1", thread.ID, domain.ThreadKindConversation))

	_, err := svc.GetThread(ctx, "user-1", thread.ID, domain.ThreadKindConversation)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteThread(ctx, "user-1", thread.ID, domain.ThreadKindConversation)
	assert.ErrorIs(t, err, domain.ErrNotFound, "double delete behaves like a missing thread")
}

func TestCrossUserMediaAccessIsNotFound(t *testing.T) {
	svc, _, media := newTestLibrary(t)
	ctx := context.Background()

	image, err := media.CreateImage(ctx, domain.Image{
		ID:         uuid.New(),
		UserID:     "user-1",
		Prompt:     "a red fox",
		URL:        "https://img.example.com/1.png",
		Resolution: domain.ImageResolutionAuto,
	})
	require.NoError(t, err)

	_, err = svc.GetImage(ctx, "user-2", image.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteImage(ctx, "user-2", image.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.GetImage(ctx, "user-1", image.ID)
	require.NoError(t, err)
	assert.Equal(t, image.URL, got.URL)
}

func TestMediaListsAreScopedByUser(t *testing.T) {
	svc, _, media := newTestLibrary(t)
	ctx := context.Background()

	_, err := media.CreateVideo(ctx, domain.Video{ID: uuid.New(), UserID: "user-1", Prompt: "a", URL: "u1"})
	require.NoError(t, err)
	_, err = media.CreateVideo(ctx, domain.Video{ID: uuid.New(), UserID: "user-2", Prompt: "b", URL: "u2"})
	require.NoError(t, err)
	_, err = media.CreateTrack(ctx, domain.MusicTrack{ID: uuid.New(), UserID: "user-1", Prompt: "c", AudioURL: "u3"})
	require.NoError(t, err)

	videos, err := svc.ListVideos(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, videos, 1)

	tracks, err := svc.ListTracks(ctx, "user-2", 0)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestLibraryRequiresAuthenticatedUser(t *testing.T) {
	svc, _, _ := newTestLibrary(t)
	ctx := context.Background()

	_, err := svc.ListImages(ctx, "", 0)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.GetVideo(ctx, "", uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
