// Package clientkit assembles the session manager, entity cache, and typed
// resource clients into one ready-to-use client for the backend API.
//
// A Client is built from a Config, typically loaded by the config package:
//
//	cfg, err := config.Load()
//	kit, err := clientkit.New(cfg)
//	kit.Session.Login(ctx, "user", "pass")
//	budgets, err := kit.Budgets.List(ctx)
package clientkit

import (
	"fmt"

	"github.com/kbayram/clientkit/cache"
	"github.com/kbayram/clientkit/config"
	"github.com/kbayram/clientkit/entity"
	"github.com/kbayram/clientkit/httpclient"
	"github.com/kbayram/clientkit/logger"
	"github.com/kbayram/clientkit/session"
	"github.com/kbayram/clientkit/version"
)

// Client bundles every clientkit component wired against one backend.
type Client struct {
	Config  *config.Config
	Logger  *logger.Logger
	Tokens  session.TokenStore
	Session *session.Manager
	Cache   *cache.Store
	Budgets *entity.Budgets
	Tasks   *entity.Tasks
}

// Option overrides parts of the assembly.
type Option func(*options)

type options struct {
	logger *logger.Logger
	tokens session.TokenStore
}

// WithLogger sets a custom logger. Defaults to one built from Config.Logging.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTokenStore sets a custom token store. Defaults to a file store at
// Config.TokenFile, or an in-memory store when no path is configured.
func WithTokenStore(ts session.TokenStore) Option {
	return func(o *options) { o.tokens = ts }
}

// New assembles a Client from the configuration.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		log = logger.New(&cfg.Logging, cfg.Name)
	}

	tokens := o.tokens
	if tokens == nil {
		if cfg.TokenFile != "" {
			tokens = session.NewFileStore(cfg.TokenFile)
		} else {
			tokens = session.NewMemoryStore()
		}
	}

	apiCfg := cfg.API
	apiCfg.Tokens = tokens
	if apiCfg.Headers == nil {
		apiCfg.Headers = make(map[string]string)
	}
	if _, ok := apiCfg.Headers["User-Agent"]; !ok {
		apiCfg.Headers["User-Agent"] = version.UserAgent(cfg.Name)
	}

	httpClient, err := httpclient.New(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("clientkit: http client: %w", err)
	}

	store := cache.NewStore(cfg.Cache, log)
	mgr := session.NewManager(httpClient, tokens, store, log)

	staleAfter := cfg.Cache.StaleAfter

	return &Client{
		Config:  cfg,
		Logger:  log,
		Tokens:  tokens,
		Session: mgr,
		Cache:   store,
		Budgets: entity.NewBudgets(mgr, store, log, entity.WithStaleAfter[entity.Budget](staleAfter)),
		Tasks:   entity.NewTasks(mgr, store, log, entity.WithStaleAfter[entity.Task](staleAfter)),
	}, nil
}
