package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"progress-service/internal/models"

	redis_v9 "github.com/redis/go-redis/v9"
)

// QuizSource is the read path the cache wraps. The mongo quiz repository
// satisfies it.
type QuizSource interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindByCourse(ctx context.Context, courseID string) ([]models.Quiz, error)
}

// QuizCache is a read-through cache over quiz definitions. Quizzes are
// authored in another service and change rarely, so short-TTL caching is
// safe; progress aggregates are never cached. Cache failures fall back to
// the source and are only logged.
type QuizCache struct {
	source QuizSource
	client *redis_v9.Client
	ttl    time.Duration
}

func NewQuizCache(source QuizSource, client *redis_v9.Client, ttl time.Duration) *QuizCache {
	return &QuizCache{source: source, client: client, ttl: ttl}
}

func quizKey(id string) string { return "progress:quiz:" + id }

func courseKey(courseID string) string { return "progress:quizzes:course:" + courseID }

func (c *QuizCache) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	key := quizKey(id)
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz models.Quiz
		if err := json.Unmarshal(cached, &quiz); err == nil {
			return &quiz, nil
		}
		log.Printf("Dropping undecodable cache entry %s", key)
		c.client.Del(ctx, key)
	}

	quiz, err := c.source.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, quiz)
	return quiz, nil
}

func (c *QuizCache) FindByCourse(ctx context.Context, courseID string) ([]models.Quiz, error) {
	key := courseKey(courseID)
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quizzes []models.Quiz
		if err := json.Unmarshal(cached, &quizzes); err == nil {
			return quizzes, nil
		}
		log.Printf("Dropping undecodable cache entry %s", key)
		c.client.Del(ctx, key)
	}

	quizzes, err := c.source.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, quizzes)
	return quizzes, nil
}

func (c *QuizCache) store(ctx context.Context, key string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to encode cache entry %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		log.Printf("Failed to store cache entry %s: %v", key, err)
	}
}

// InitClient builds the shared redis client and verifies connectivity.
// A dead redis is not fatal: callers may still construct the cache, every
// read will just miss through to the source.
func InitClient(addr, password string, db int) (*redis_v9.Client, error) {
	client := redis_v9.NewClient(&redis_v9.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return client, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
