package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

func exchange(prompt, reply string) []domain.Message {
	return []domain.Message{
		{Role: domain.MessageRoleUser, Content: prompt},
		{Role: domain.MessageRoleAssistant, Content: reply},
	}
}

func TestThreadTurnsGetSequentialPositions(t *testing.T) {
	repo := NewInMemoryThreadRepository(logger.New(logger.ERROR))
	ctx := context.Background()

	thread, err := repo.AppendTurns(ctx, "user-1", domain.ThreadKindConversation, nil, exchange("first question", "first answer"))
	require.NoError(t, err)

	id := thread.ID
	thread, err = repo.AppendTurns(ctx, "user-1", domain.ThreadKindConversation, &id, exchange("second question", "second answer"))
	require.NoError(t, err)

	require.Len(t, thread.Messages, 4)
	for i, m := range thread.Messages {
		assert.Equal(t, i, m.Position)
	}
}

func TestThreadExchangeOrderSurvivesSharedTimestamps(t *testing.T) {
	repo := NewInMemoryThreadRepository(logger.New(logger.ERROR))
	ctx := context.Background()

	thread, err := repo.AppendTurns(ctx, "user-1", domain.ThreadKindConversation, nil, exchange("hello", "hi there"))
	require.NoError(t, err)

	// Both turns of an exchange carry the same timestamp; position is
	// the only thing keeping the user turn ahead of the reply.
	stored, err := repo.GetByIDForUser(ctx, thread.ID, "user-1", domain.ThreadKindConversation)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.True(t, stored.Messages[0].CreatedAt.Equal(stored.Messages[1].CreatedAt))
	assert.Equal(t, domain.MessageRoleUser, stored.Messages[0].Role)
	assert.Equal(t, domain.MessageRoleAssistant, stored.Messages[1].Role)
	assert.Less(t, stored.Messages[0].Position, stored.Messages[1].Position)
}

func TestThreadAppendToForeignThreadIsNotFound(t *testing.T) {
	repo := NewInMemoryThreadRepository(logger.New(logger.ERROR))
	ctx := context.Background()

	thread, err := repo.AppendTurns(ctx, "user-1", domain.ThreadKindConversation, nil, exchange("hello", "hi"))
	require.NoError(t, err)

	id := thread.ID
	_, err = repo.AppendTurns(ctx, "user-2", domain.ThreadKindConversation, &id, exchange("intruding", "reply"))
	assert.ErrorIs(t, err, ErrNotFound)
}
