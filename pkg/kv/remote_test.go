package kv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Remote backends run only when a server is provided:
//
//	BENTO_TEST_REDIS=localhost:6379 BENTO_TEST_MONGO=mongodb://localhost:27017 go test ./pkg/kv

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BENTO_TEST_REDIS")
	if addr == "" {
		t.Skip("BENTO_TEST_REDIS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("BENTO_TEST_MONGO")
	if uri == "" {
		t.Skip("BENTO_TEST_MONGO not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, MongoConfig{
		URI:        uri,
		Database:   "bento_test",
		Collection: fmt.Sprintf("grids_%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(context.Background())
		s.Close()
	}()
	exerciseStore(t, s)
}

func TestClassifyRedis(t *testing.T) {
	if classifyRedis(nil) != nil {
		t.Error("nil should stay nil")
	}
	if err := classifyRedis(redis.Nil); !errors.Is(err, redis.Nil) || IsRetryable(err) {
		t.Errorf("redis.Nil should pass through unchanged, got %v", err)
	}

	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := classifyRedis(netErr)
	if !IsRetryable(err) {
		t.Errorf("network error should be retryable, got %v", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("network error should wrap ErrUnavailable, got %v", err)
	}

	other := errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	if IsRetryable(classifyRedis(other)) {
		t.Error("command errors should not be retryable")
	}
}

func TestClassifyMongo(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"no documents", mongo.ErrNoDocuments, false},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), true},
		{"duplicate key", errors.New("E11000 duplicate key error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyMongo(tt.err)
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable(classifyMongo(%v)) = %v, want %v", tt.err, !tt.retryable, tt.retryable)
			}
			if tt.err != nil && !errors.Is(err, tt.err) && !tt.retryable {
				t.Errorf("non-retryable error was rewritten: %v", err)
			}
		})
	}
}
