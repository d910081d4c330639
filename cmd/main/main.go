package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"currency-observer/src/config"
	"currency-observer/src/dispatcher"
	"currency-observer/src/interfaces"
	"currency-observer/src/logger"
	"currency-observer/src/network"
	"currency-observer/src/poller"
	"currency-observer/src/rate_source/cbr"
	"currency-observer/src/registry"
	"currency-observer/src/server"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// Setup Components
	var netMgr interfaces.INetworkManager = network.NewNetworkManager(config.MConfig, appLogger)
	var source interfaces.IRateSource = cbr.NewCBRSource(config.MConfig, netMgr)

	// One shared subscription table: the connection handlers write it, the
	// poll loop reads it.
	reg := registry.NewSubscriptionRegistry(logger.NewLogger(config.LogLevel, "Registry"))

	disp := dispatcher.NewDispatcher(source, reg, nil, logger.NewLogger(config.LogLevel, "Dispatcher"))

	srv := server.NewServer(config.MConfig, appLogger, reg, disp)
	disp.Delivery = srv

	// Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// Start Poll Loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}
	interval := time.Duration(config.Poll.IntervalSeconds) * time.Second
	loop := poller.NewPoller(disp, interval, logger.NewLogger(config.LogLevel, "Poller"))

	if err := loop.Start(ctx, wrapWg); err != nil {
		appLogger.Critical("Failed to start poller: %v", err)
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("%s running on %s:%d (poll every %s)", config.Name, config.Host, config.Port, interval)

	<-quit
	appLogger.Info("Shutting down...")
	cancel()      // Signal poller to stop
	wrapWg.Wait() // Wait for the loop to close
}
