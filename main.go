package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/example/revocab/internal/api"
	"github.com/example/revocab/internal/bot"
	"github.com/example/revocab/internal/config"
	"github.com/example/revocab/internal/database"
	"github.com/example/revocab/internal/excel"
	"github.com/example/revocab/internal/scheduler"
)

func main() {
	importFile := flag.String("import", "", "import words from an .xlsx or .csv file and exit")
	importList := flag.String("import-list", "", "name of the list to import into")
	importUser := flag.Int64("import-user", 0, "user id that owns the imported list")
	flag.Parse()

	cfg := config.Load()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if *importFile != "" {
		runImport(*importFile, *importList, *importUser)
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	api.NewAPIV1Service().RegisterRoutes(e)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	var b *bot.Bot
	var sched *scheduler.Scheduler
	if cfg.TelegramBotToken != "" {
		var err error
		b, err = bot.NewBot(cfg.TelegramBotToken)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go func() {
			if err := b.Start(ctx); err != nil && err != context.Canceled {
				log.Printf("Bot error: %v", err)
			}
		}()

		sched = scheduler.New(b)
		sched.Start()
	} else {
		log.Println("TELEGRAM_BOT_TOKEN is not set, running HTTP API only")
	}

	// Signals that shutdown has finished.
	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if sched != nil {
			sched.Stop()
		}
		if b != nil {
			if err := b.Stop(shutdownCtx); err != nil {
				log.Printf("Error stopping bot: %v", err)
			}
		}
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error stopping HTTP server: %v", err)
		}

		close(done)
	}()

	log.Printf("Listening on %s. Press Ctrl+C to stop.", cfg.HTTPAddr)
	<-done
	log.Println("Stopped successfully")
}

func runImport(file, list string, userID int64) {
	importCfg := excel.DefaultImportConfig()
	importCfg.FilePath = file
	importCfg.ListName = list
	importCfg.UserID = userID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := excel.ImportWords(ctx, importCfg)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import finished: %d processed, %d created, %d skipped",
		result.TotalProcessed, result.Created, result.Skipped)
	for _, e := range result.Errors {
		log.Printf("  %s", e)
	}
}
