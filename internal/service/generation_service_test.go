package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/internal/provider"
	"github.com/SufyanAli-7/Genix-AI/internal/repository"
)

// nopMetrics satisfies the metrics surface without a registry
type nopMetrics struct{}

func (nopMetrics) IncGenerationCompleted(tool string)                     {}
func (nopMetrics) IncGenerationFailed(tool string, reason string)         {}
func (nopMetrics) IncQuotaDenied(tool string)                             {}
func (nopMetrics) IncUsageRecorded()                                      {}
func (nopMetrics) ObserveGenerationDuration(tool string, seconds float64) {}
func (nopMetrics) ObservePollAttempts(attempts float64)                   {}

// stubChat returns a canned reply
type stubChat struct {
	reply string
	err   error
	turns []provider.ChatTurn
	calls int
}

func (s *stubChat) Complete(ctx context.Context, turns []provider.ChatTurn) (string, error) {
	s.calls++
	s.turns = turns
	return s.reply, s.err
}

// stubImages fails a configurable number of leading calls
type stubImages struct {
	mu       sync.Mutex
	calls    int
	failNext int
}

func (s *stubImages) Generate(ctx context.Context, prompt string, resolution domain.ImageResolution) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failNext > 0 {
		s.failNext--
		return "", domain.NewProviderError("image", "unavailable", "upstream down", 503, nil)
	}
	return fmt.Sprintf("https://img.example.com/%d.png", s.calls), nil
}

// stubVideo returns a canned URL
type stubVideo struct {
	url   string
	err   error
	calls int
}

func (s *stubVideo) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.url, s.err
}

// stubMusic resolves to composed on the first status check
type stubMusic struct {
	composeErr error
}

func (s *stubMusic) Compose(ctx context.Context, prompt string) (string, error) {
	if s.composeErr != nil {
		return "", s.composeErr
	}
	return "task-42", nil
}

func (s *stubMusic) TaskState(ctx context.Context, taskID string) (provider.TaskState, error) {
	return provider.TaskState{Status: provider.TaskStatusComposed, ResultURL: "https://cdn.example.com/track.mp3"}, nil
}

// failingMedia rejects every write; reads delegate to the embedded repo
type failingMedia struct {
	repository.MediaRepository
}

func (failingMedia) CreateImage(ctx context.Context, image domain.Image) (domain.Image, error) {
	return domain.Image{}, errors.New("disk full")
}

func (failingMedia) CreateVideo(ctx context.Context, video domain.Video) (domain.Video, error) {
	return domain.Video{}, errors.New("disk full")
}

func (failingMedia) CreateTrack(ctx context.Context, track domain.MusicTrack) (domain.MusicTrack, error) {
	return domain.MusicTrack{}, errors.New("disk full")
}

type generationFixture struct {
	svc    GenerationService
	usage  *repository.InMemoryUsageRepository
	subs   *repository.InMemorySubscriptionRepository
	media  repository.MediaRepository
	chat   *stubChat
	images *stubImages
	video  *stubVideo
	music  *stubMusic
}

func newGenerationFixture(t *testing.T, freeLimit int, media repository.MediaRepository) *generationFixture {
	t.Helper()
	log := testLog()

	usage := repository.NewInMemoryUsageRepository(log)
	subs := repository.NewInMemorySubscriptionRepository(log)
	threads := repository.NewInMemoryThreadRepository(log)
	if media == nil {
		media = repository.NewInMemoryMediaRepository(log)
	}

	chat := &stubChat{reply: "assistant reply"}
	images := &stubImages{}
	video := &stubVideo{url: "https://cdn.example.com/video.mp4"}
	music := &stubMusic{}

	poller := provider.NewPoller(log)
	poller.Sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	svc := NewGenerationService(GenerationDeps{
		Entitlements: NewEntitlementService(usage, subs, freeLimit, log),
		Threads:      threads,
		Media:        media,
		Chat:         chat,
		Images:       images,
		Videos:       video,
		Music:        music,
		Poller:       poller,
		Metrics:      nopMetrics{},
		Log:          log,
	})

	return &generationFixture{
		svc:    svc,
		usage:  usage,
		subs:   subs,
		media:  media,
		chat:   chat,
		images: images,
		video:  video,
		music:  music,
	}
}

func (f *generationFixture) usageCount(t *testing.T, userID string) int {
	t.Helper()
	count, err := f.usage.Get(context.Background(), userID)
	require.NoError(t, err)
	return count
}

func TestConversationCreatesThreadAndMetersOnce(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)
	ctx := context.Background()

	thread, err := f.svc.Conversation(ctx, "user-1", nil, "Explain goroutines")

	require.NoError(t, err)
	assert.Equal(t, domain.ThreadKindConversation, thread.Kind)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, domain.MessageRoleUser, thread.Messages[0].Role)
	assert.Equal(t, "Explain goroutines", thread.Messages[0].Content)
	assert.Equal(t, domain.MessageRoleAssistant, thread.Messages[1].Role)
	assert.Equal(t, "assistant reply", thread.Messages[1].Content)
	assert.Equal(t, 1, f.usageCount(t, "user-1"))
}

func TestConversationContinuesThreadWithHistory(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)
	ctx := context.Background()

	first, err := f.svc.Conversation(ctx, "user-1", nil, "First question")
	require.NoError(t, err)

	_, err = f.svc.Conversation(ctx, "user-1", &first.ID, "Follow-up")
	require.NoError(t, err)

	// The second completion must replay the stored dialog before the
	// new prompt.
	require.Len(t, f.chat.turns, 3)
	assert.Equal(t, "First question", f.chat.turns[0].Content)
	assert.Equal(t, "assistant reply", f.chat.turns[1].Content)
	assert.Equal(t, "Follow-up", f.chat.turns[2].Content)
	assert.Equal(t, 2, f.usageCount(t, "user-1"))
}

func TestCodePrependsSystemPrompt(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)

	thread, err := f.svc.Code(context.Background(), "user-1", nil, "Write a binary search")

	require.NoError(t, err)
	assert.Equal(t, domain.ThreadKindCode, thread.Kind)
	require.NotEmpty(t, f.chat.turns)
	assert.Equal(t, string(domain.MessageRoleSystem), f.chat.turns[0].Role)
}

func TestConversationUnknownThreadIsNotFound(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)

	other, err := f.svc.Conversation(context.Background(), "user-2", nil, "hello")
	require.NoError(t, err)

	// user-1 must not be able to continue user-2's thread
	_, err = f.svc.Conversation(context.Background(), "user-1", &other.ID, "hijack")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImageBatchPartialFailureKeepsSurvivors(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)
	f.images.failNext = 1

	images, err := f.svc.Image(context.Background(), "user-1", "a red fox", 4, domain.ImageResolutionAuto)

	require.NoError(t, err)
	assert.Len(t, images, 3, "one failed call drops out of the batch")
	assert.Equal(t, 4, f.images.calls)
	assert.Equal(t, 1, f.usageCount(t, "user-1"), "a batch counts as one generation")
}

func TestImageBatchAllFailedIsProviderError(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)
	f.images.failNext = 3

	_, err := f.svc.Image(context.Background(), "user-1", "a red fox", 3, domain.ImageResolutionAuto)

	require.Error(t, err)
	var provErr *domain.ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Zero(t, f.usageCount(t, "user-1"), "failed jobs are not metered")
}

func TestImageRejectsInvalidAmount(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)

	_, err := f.svc.Image(context.Background(), "user-1", "a red fox", 0, domain.ImageResolutionAuto)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Image(context.Background(), "user-1", "a red fox", domain.MaxImageBatch+1, domain.ImageResolutionAuto)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, f.images.calls, "invalid input never reaches the provider")
}

func TestQuotaDeniedBeforeProviderCall(t *testing.T) {
	f := newGenerationFixture(t, 1, nil)
	ctx := context.Background()

	_, err := f.svc.Video(ctx, "user-1", "a drone shot")
	require.NoError(t, err)

	_, err = f.svc.Video(ctx, "user-1", "another drone shot")
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, 1, f.video.calls, "a denied job must not call the provider")
	assert.Equal(t, 1, f.usageCount(t, "user-1"))
}

func TestSubscriberIsNotMetered(t *testing.T) {
	f := newGenerationFixture(t, 1, nil)
	ctx := context.Background()

	_, err := f.subs.Upsert(ctx, domain.UserSubscription{
		UserID:           "user-1",
		StripeCustomerID: "cus_1",
		CurrentPeriodEnd: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Video(ctx, "user-1", "a drone shot")
		require.NoError(t, err)
	}

	assert.Zero(t, f.usageCount(t, "user-1"))
}

func TestMusicComposeAndPoll(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)

	track, err := f.svc.Music(context.Background(), "user-1", "lofi beats")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/track.mp3", track.AudioURL)
	assert.Equal(t, "lofi beats", track.Prompt)
	assert.Equal(t, 1, f.usageCount(t, "user-1"))
}

func TestPersistenceFailureDoesNotLoseResult(t *testing.T) {
	log := testLog()
	f := newGenerationFixture(t, 12, failingMedia{repository.NewInMemoryMediaRepository(log)})
	ctx := context.Background()

	video, err := f.svc.Video(ctx, "user-1", "a drone shot")
	require.NoError(t, err, "a storage failure must not fail the generation")
	assert.Equal(t, "https://cdn.example.com/video.mp4", video.URL)

	track, err := f.svc.Music(ctx, "user-1", "lofi beats")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/track.mp3", track.AudioURL)

	images, err := f.svc.Image(ctx, "user-1", "a red fox", 2, domain.ImageResolutionAuto)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestGenerationRequiresAuthenticatedUser(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)

	_, err := f.svc.Video(context.Background(), "", "a drone shot")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Zero(t, f.video.calls)
}

func TestEmptyPromptRejected(t *testing.T) {
	f := newGenerationFixture(t, 12, nil)
	ctx := context.Background()

	_, err := f.svc.Conversation(ctx, "user-1", nil, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Music(ctx, "user-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, f.chat.calls)
}
