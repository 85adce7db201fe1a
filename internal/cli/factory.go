package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/banktalk/banktalk"
	"github.com/banktalk/banktalk/internal/config"
	"github.com/banktalk/banktalk/internal/metrics"
	"github.com/banktalk/banktalk/pkg/adapters/eino"
	"github.com/banktalk/banktalk/pkg/adapters/file"
	"github.com/banktalk/banktalk/pkg/adapters/memory"
	"github.com/banktalk/banktalk/pkg/adapters/redis"
	"github.com/banktalk/banktalk/pkg/persistence/middleware"
	"github.com/banktalk/banktalk/pkg/ports"
	"github.com/banktalk/banktalk/pkg/rag"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrMissingAPIKey is returned when a command needs the language model but
// no key was configured.
var ErrMissingAPIKey = errors.New("llm_api_key is not set (BANKTALK_LLM_API_KEY)")

// Storage is a configured StateStore with its optional locker.
type Storage struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases backend connections.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage builds the store selected by cfg.Store, sealed with AES-GCM
// when an encryption key is configured.
func OpenStorage(cfg *config.Config) (*Storage, error) {
	s := &Storage{}
	switch cfg.Store {
	case config.StoreFile:
		s.Store = file.New(cfg.StoreDir)
	case config.StoreRedis:
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.SessionTTL),
		)
		s.Store = rs
		s.Locker = redis.NewLocker(rs.Client(), cfg.RedisPrefix)
		s.close = rs.Close
	default:
		s.Store = memory.NewStore()
	}

	if cfg.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(cfg.EncryptionKey, cfg.EncryptionFallbackKeys)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("invalid encryption_key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Store = middleware.Chain(s.Store, mw)
	}
	return s, nil
}

// App is a fully wired assistant and the resources it owns.
type App struct {
	Assistant *banktalk.Assistant
	Metrics   *metrics.Collectors
	storage   *Storage
	retriever *rag.BleveRetriever
}

// Close releases the store and the search index.
func (a *App) Close() error {
	var errs []error
	if a.retriever != nil {
		errs = append(errs, a.retriever.Close())
	}
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}
	return errors.Join(errs...)
}

// NewApp wires oracle, RAG collaborator, storage and metrics from cfg.
// reg may be nil, in which case no collectors are registered.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if cfg.LLMAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	oracle, err := eino.NewOpenAI(ctx, eino.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
	}, eino.WithTimeout(cfg.LLMTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create language model client: %w", err)
	}

	storage, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}
	app := &App{storage: storage}

	opts := []banktalk.Option{
		banktalk.WithStore(storage.Store),
		banktalk.WithLogger(logger),
		banktalk.WithKeepCompletedOnReset(cfg.KeepCompletedOnReset),
		banktalk.WithMaxInputSize(cfg.MaxInputSize),
		banktalk.WithLockTTL(cfg.LockTTL),
	}
	if storage.Locker != nil {
		opts = append(opts, banktalk.WithLocker(storage.Locker))
	}

	if reg != nil {
		m, err := metrics.New(reg)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Metrics = m
		opts = append(opts, banktalk.WithLifecycleHooks(m.Hooks()))
	}

	answerer, err := app.openAnswerer(cfg, oracle, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if answerer != nil {
		opts = append(opts, banktalk.WithAnswerer(answerer))
	} else {
		logger.Warn("No index_path configured; product questions get the fallback reply")
	}

	app.Assistant, err = banktalk.New(oracle, opts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) openAnswerer(cfg *config.Config, oracle ports.Oracle, logger *slog.Logger) (ports.Answerer, error) {
	if cfg.IndexPath == "" {
		return nil, nil
	}
	retriever, err := rag.OpenRetriever(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s (run 'banktalk index' first): %w", cfg.IndexPath, err)
	}
	a.retriever = retriever

	return rag.NewAnswerer(retriever, oracle,
		rag.WithTopK(cfg.RAGTopK),
		rag.WithCacheSize(cfg.RAGCacheSize),
		rag.WithLogger(logger),
	)
}
