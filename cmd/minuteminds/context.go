package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"minuteminds/internal/config"
	"minuteminds/internal/gateway"
	"minuteminds/internal/history"
	"minuteminds/internal/logging"
	"minuteminds/internal/notify"
	"minuteminds/internal/pipeline"
	"minuteminds/internal/search"
	"minuteminds/internal/session"
)

// sessionBridge breaks the construction cycle between the gateway and the
// session manager: the gateway needs a credential source and an auth-failure
// hook before the manager exists.
type sessionBridge struct {
	mgr *session.Manager
}

func (b *sessionBridge) Credential() string {
	if b.mgr == nil {
		return ""
	}
	return b.mgr.Credential()
}

func (b *sessionBridge) invalidate() {
	if b.mgr != nil {
		b.mgr.Invalidate()
	}
}

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	servicesOnce sync.Once
	servicesErr  error
	logger       *slog.Logger
	gateway      *gateway.Client
	session      *session.Manager
	pipeline     *pipeline.Controller
	historySvc   *history.Service
	historyStore *history.Store
	searchSvc    *search.Service
	notifier     notify.Service
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureServices wires the full dependency graph once: logger, gateway,
// session, pipeline, history, search, and notifications. Session
// initialization (stored-credential verification) happens here so every
// command sees a settled session.
func (c *commandContext) ensureServices(ctx context.Context) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	c.servicesOnce.Do(func() {
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.servicesErr = err
			return
		}
		c.logger = logger

		bridge := &sessionBridge{}
		timeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
		gw, err := gateway.New(cfg.Server.URL, timeout,
			gateway.WithCredentialSource(bridge),
			gateway.WithAuthFailureHook(bridge.invalidate),
			gateway.WithLogger(logger))
		if err != nil {
			c.servicesErr = err
			return
		}
		c.gateway = gw

		mgr, err := session.NewManager(gw, cfg.Paths.StateDir, session.WithLogger(logger))
		if err != nil {
			c.servicesErr = err
			return
		}
		bridge.mgr = mgr
		mgr.Initialize(ctx)
		c.session = mgr

		ctrl, err := pipeline.New(gw, mgr, cfg.Paths.StateDir, pipeline.WithLogger(logger))
		if err != nil {
			c.servicesErr = err
			return
		}
		c.pipeline = ctrl

		store, err := history.Open(cfg.Paths.StateDir)
		if err != nil {
			// The cache is an optimization; history degrades to remote-only.
			logger.Warn("history cache unavailable", logging.Error(err))
			store = nil
		}
		c.historyStore = store
		c.historySvc = history.NewService(gw, store, logger)
		c.searchSvc = search.NewService(gw, mgr, logger)
		c.notifier = notify.NewService(cfg)
	})
	return c.servicesErr
}

// close releases resources held by the service graph.
func (c *commandContext) close() {
	if c.historyStore != nil {
		_ = c.historyStore.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
