package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/revisit-app/revisit-agent/internal/bridge"
	"github.com/revisit-app/revisit-agent/internal/config"
	"github.com/revisit-app/revisit-agent/internal/db"
	"github.com/revisit-app/revisit-agent/internal/gateway"
	"github.com/revisit-app/revisit-agent/internal/service"
	"github.com/revisit-app/revisit-agent/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			newLogger,
			db.NewGormClient,
			db.NewStore,
			newGatewayClient,
			transport.NewMessageHub,
			newBridge,
			newService,
			newHTTPServer,
		),
		fx.Invoke(func(*transport.HTTPServer) {}),
	)
	app.Run()
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = level
	logger, err := c.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func newGatewayClient(cfg *config.Config, l *zap.SugaredLogger) *gateway.Client {
	return gateway.NewClient(cfg.GatewayURL, l)
}

func newBridge(hub *transport.MessageHub, l *zap.SugaredLogger) *bridge.Bridge {
	return bridge.New(hub, l)
}

func newService(store *db.Store, gw *gateway.Client, br *bridge.Bridge, l *zap.SugaredLogger) *service.Bookmarks {
	return service.NewBookmarks(store, gw, br, l)
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, svc *service.Bookmarks, gw *gateway.Client, hub *transport.MessageHub, l *zap.SugaredLogger) *transport.HTTPServer {
	return transport.NewHTTPServer(lc, cfg, svc, gw, hub, l)
}
