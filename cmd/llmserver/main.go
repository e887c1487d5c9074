package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tatianab/llmserver/internal/config"
	"github.com/tatianab/llmserver/internal/handler"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/tatianab/llmserver/internal/tui"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
	"golang.org/x/sync/errgroup"
)

var (
	configFile = flag.String("f", "etc/llmserver.yaml", "the config file")
	noConsole  = flag.Bool("no-console", false, "serve the API without the interactive console")
)

func main() {
	flag.Parse()

	c, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	console := c.Console.Enabled && !*noConsole
	if console && c.Log.Mode == "console" {
		// The console owns the terminal.
		c.Log.Mode = "file"
	}
	logx.MustSetup(c.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svcCtx, err := svc.NewServiceContext(ctx, *c)
	if err != nil {
		logx.Errorf("Error creating services: %v", err)
		os.Exit(1)
	}
	defer svcCtx.Close()
	svcCtx.Registry.Probe(ctx)

	server := rest.MustNewServer(c.RestConf)
	handler.RegisterHandlers(server, svcCtx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Infof("Starting server at %s:%d...", c.Host, c.Port)
		server.Start()
		return nil
	})
	g.Go(func() error {
		defer server.Stop()
		if console {
			return tui.Run(gctx, svcCtx)
		}
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logx.Errorf("Error running console: %v", err)
		os.Exit(1)
	}
}
