package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio/internal/config"
	"portfolio/internal/queue"
	"portfolio/internal/storage"
	"portfolio/internal/store"
)

const removeAttempts = 3

// Worker consumes cleanup messages and removes storage objects left behind
// by photo deletions and failed create flows. Removal is best-effort: after
// a few attempts the object is logged and dropped.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		log.Fatal("SUPABASE_URL / SUPABASE_ANON_KEY must be set for the cleanup worker")
	}
	storageClient := storage.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.StorageBucket)

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "portfolio:cleanup")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("cleanup worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeRemoveObject {
			continue
		}

		cleanup, err := queue.ParseCleanup(msg)
		if err != nil {
			log.Printf("bad cleanup payload: %v", err)
			continue
		}

		for _, objectPath := range cleanup.Paths {
			if err := removeWithRetry(ctx, storageClient, objectPath); err != nil {
				log.Printf("giving up on %s: %v", objectPath, err)
			} else {
				log.Printf("removed %s", objectPath)
			}
		}
	}

	log.Println("cleanup worker stopped")
}

func removeWithRetry(ctx context.Context, client *storage.Client, objectPath string) error {
	var err error
	for attempt := 1; attempt <= removeAttempts; attempt++ {
		if err = client.Remove(ctx, objectPath); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return err
}
