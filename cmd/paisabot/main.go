package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/paisabot/paisabot/internal/app"
	"github.com/paisabot/paisabot/internal/config"
	"github.com/paisabot/paisabot/internal/ledger"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	message    = flag.String("m", "", "One-shot chat message")
	version    = "dev"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("paisabot version %s\n", version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "serve":
			os.Args = append(os.Args[:1], os.Args[2:]...)
			flag.Parse()
			initApp().RunServe()
			return
		case "chat":
			os.Args = append(os.Args[:1], os.Args[2:]...)
			flag.Parse()
			initApp().RunChat(*message)
			return
		}
	}

	flag.Parse()
	initApp().RunChat(*message)
}

func initApp() *app.App {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := ledger.OpenSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Fatal("Failed to open ledger database", zap.Error(err))
	}
	kv, err := ledger.OpenBadger(cfg.Storage.BadgerPath)
	if err != nil {
		logger.Fatal("Failed to open key-value store", zap.Error(err))
	}

	store, err := ledger.NewStore(db, kv)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}

	return app.New(cfg, store, logger, version)
}

func printHelp() {
	fmt.Println(`paisabot - conversational money tracker

Usage:
  paisabot chat              Interactive chat in the terminal
  paisabot chat -m "..."     One-shot message
  paisabot serve             Run the HTTP API and configured channels
  paisabot version           Print version

Flags:
  -config string   Path to config file
  -data string     Path to data directory
  -m string        One-shot chat message`)
}
