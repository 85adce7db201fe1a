package cli

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/banktalk/banktalk/internal/config"
	"github.com/banktalk/banktalk/internal/logging"
	"github.com/banktalk/banktalk/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func roundTrip(t *testing.T, s *Storage) {
	t.Helper()
	ctx := context.Background()
	state := domain.NewConversationState()
	state.ActiveFlow = domain.FlowEMI
	require.NoError(t, s.Store.Save(ctx, "s1", state))
	loaded, err := s.Store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.FlowEMI, loaded.ActiveFlow)
}

func TestOpenStorage(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		cfg := testConfig(t)
		s, err := OpenStorage(cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.Nil(t, s.Locker)
		roundTrip(t, s)
	})

	t.Run("File", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Store = config.StoreFile
		cfg.StoreDir = filepath.Join(t.TempDir(), "sessions")
		s, err := OpenStorage(cfg)
		require.NoError(t, err)
		roundTrip(t, s)
		assert.FileExists(t, filepath.Join(cfg.StoreDir, "s1.json"))
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(t)
		cfg.Store = config.StoreRedis
		cfg.RedisAddr = mr.Addr()
		s, err := OpenStorage(cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.NotNil(t, s.Locker)
		roundTrip(t, s)
		assert.True(t, mr.Exists(cfg.RedisPrefix+"s1"))
	})

	t.Run("Encrypted", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cfg := testConfig(t)
		cfg.EncryptionKey = base64.StdEncoding.EncodeToString(key)
		s, err := OpenStorage(cfg)
		require.NoError(t, err)
		roundTrip(t, s)
	})

	t.Run("BadKey", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.EncryptionKey = "c2hvcnQ="
		_, err := OpenStorage(cfg)
		assert.Error(t, err)
	})
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("MissingKey", func(t *testing.T) {
		cfg := testConfig(t)
		_, err := NewApp(ctx, cfg, logger, nil)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("MissingIndex", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.LLMAPIKey = "sk-test"
		cfg.IndexPath = filepath.Join(t.TempDir(), "nope.bleve")
		_, err := NewApp(ctx, cfg, logger, nil)
		assert.ErrorContains(t, err, "banktalk index")
	})

	t.Run("Wired", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.LLMAPIKey = "sk-test"
		app, err := NewApp(ctx, cfg, logger, prometheus.NewRegistry())
		require.NoError(t, err)
		defer app.Close()
		assert.NotNil(t, app.Assistant)
		assert.NotNil(t, app.Metrics)
	})
}
