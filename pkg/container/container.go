package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"saloncart-backend/internal/config"
	cartHandler "saloncart-backend/internal/domains/cart/handler"
	cartStore "saloncart-backend/internal/domains/cart/store"
	"saloncart-backend/internal/infrastructure/persistence"
	"saloncart-backend/pkg/kv"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds ALL dependencies of the application.
// This struct is the root of the dependency graph: the cart manager is the
// single source of truth for cart state, handlers are thin HTTP adapters
// around it, and the KV backend is whatever the config selected.
type Container struct {
	Config *config.Config

	// Infrastructure - lifecycle: singleton
	KV    kv.Store           // cart persistence backend
	Redis *persistence.Redis // set only when the redis backend is active

	// Domain - lifecycle: singleton
	CartManager *cartStore.Manager

	// HTTP - lifecycle: singleton
	CartHandler *cartHandler.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer creates and initializes the whole dependency graph.
// Initialization order: config, persistence backend, cart manager, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE PERSISTENCE BACKEND
	// ========================================
	backend, err := buildBackend(c, cfg)
	if err != nil {
		return nil, err
	}
	c.KV = backend
	log.Printf("✅ Cart persistence ready (backend: %s)", cfg.Cart.Backend)

	// ========================================
	// STEP 3: DOMAIN + HANDLER LAYER
	// ========================================
	c.CartManager = cartStore.NewManager(c.KV)
	c.CartHandler = cartHandler.NewHandler(c.CartManager)

	log.Println("✅ Container initialized")
	return c, nil
}

func buildBackend(c *Container, cfg *config.Config) (kv.Store, error) {
	switch cfg.Cart.Backend {
	case "memory":
		return kv.NewMemory(), nil

	case "file":
		backend, err := kv.NewFile(cfg.Cart.FileDir)
		if err != nil {
			return nil, fmt.Errorf("failed to init file backend: %w", err)
		}
		return backend, nil

	case "redis":
		backend := persistence.NewRedis(
			cfg.Redis.Host,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := backend.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		c.Redis = backend
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown cart backend %q", cfg.Cart.Backend)
	}
}

// Cleanup releases infrastructure resources on shutdown
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close redis: %v", err)
		}
	}
}
