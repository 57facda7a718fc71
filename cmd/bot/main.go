package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkazmin/pvzbot/config"
	"github.com/dkazmin/pvzbot/internal/bot"
	"github.com/dkazmin/pvzbot/internal/scheduler"
	"github.com/dkazmin/pvzbot/internal/service"
	"github.com/dkazmin/pvzbot/internal/session"
	"github.com/dkazmin/pvzbot/internal/storage"
	"github.com/dkazmin/pvzbot/internal/workflow/engine"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	userSvc := service.NewUserService(store, cfg.StoreTimeout)
	pointSvc := service.NewPointService(store, cfg.StoreTimeout)
	shiftSvc := service.NewShiftService(store, cfg.StoreTimeout)
	reviewSvc := service.NewReviewService(store, cfg.StoreTimeout)
	calendarSvc := service.NewCalendarService(store, cfg.StoreTimeout)

	registry := session.New(cfg.SessionTTL)
	eng := engine.New(registry, userSvc, pointSvc, shiftSvc)

	tgBot, err := bot.New(cfg, eng, userSvc, pointSvc, shiftSvc, reviewSvc, calendarSvc)
	if err != nil {
		log.Fatalf("Failed to init bot: %v", err)
	}

	sched := scheduler.New(cfg, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			log.Printf("Bot error: %v", err)
		}
	}()

	log.Println("PvzBot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	sched.Stop()

	log.Println("PvzBot stopped")
}
