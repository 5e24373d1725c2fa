package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"soundscore/config"
	"soundscore/db"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection",
	Long:  `Connect to the configured Redis instance, run a round trip and report the result.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		key := "soundscore:healthcheck"
		if err := db.RedisClient.Set(ctx, key, time.Now().Format(time.RFC3339), time.Minute).Err(); err != nil {
			log.Fatalf("Redis write failed: %v", err)
		}
		if _, err := db.RedisClient.Get(ctx, key).Result(); err != nil {
			log.Fatalf("Redis read failed: %v", err)
		}
		if err := db.RedisClient.Del(ctx, key).Err(); err != nil {
			log.Printf("Failed to clean up healthcheck key: %v", err)
		}

		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
		fmt.Println("Redis round trip OK.")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
