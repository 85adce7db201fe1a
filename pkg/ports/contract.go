package ports

import (
	"context"
	"testing"
	"time"

	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewConversationState()
		state.ActiveFlow = domain.FlowEMI
		state.AwaitingField = "rate"
		state.Slots["principal"] = 500000.0
		state.Slots["tenure_months"] = 60

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.FlowEMI, loaded.ActiveFlow)
		assert.Equal(t, "rate", loaded.AwaitingField)

		// JSON-backed stores return numbers as float64; the typed accessors hide that.
		p, ok := loaded.Slots.Float("principal")
		assert.True(t, ok)
		assert.Equal(t, 500000.0, p)
		n, ok := loaded.Slots.Int("tenure_months")
		assert.True(t, ok)
		assert.Equal(t, 60, n)
	})

	t.Run("Paused And Completed Survive", func(t *testing.T) {
		state := domain.NewConversationState()
		state.ActiveFlow = domain.FlowLoan
		state.Slots["age"] = 30
		state.CompleteActiveFlow()
		state.ActiveFlow = domain.FlowEMI
		state.AwaitingField = "principal"
		state.PauseCurrentFlow()

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.NotNil(t, loaded.PausedFlow)
		assert.Equal(t, domain.FlowEMI, loaded.PausedFlow.ActiveFlow)
		assert.Equal(t, "principal", loaded.PausedFlow.AwaitingField)
		require.NotNil(t, loaded.LastCompletedFlow)
		assert.Equal(t, domain.FlowLoan, loaded.LastCompletedFlow.Flow)
	})

	t.Run("Load Returns Isolated Copy", func(t *testing.T) {
		state := domain.NewConversationState()
		state.Slots["rate"] = 9.0
		require.NoError(t, store.Save(ctx, sessionID, state))

		// Mutating the caller's copy after Save must not leak into the store.
		state.Slots["rate"] = 1.0

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		r, _ := loaded.Slots.Float("rate")
		assert.Equal(t, 9.0, r)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewConversationState())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewConversationState())
		_ = store.Save(ctx, id2, domain.NewConversationState())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
