package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr         string
	Password     string
	UsersHashKey string
	CatalogTTL   time.Duration
}

type ValkeyClient struct {
	client       *redis.Client
	usersHashKey string
	catalogTTL   time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.UsersHashKey == "" {
		cfg.UsersHashKey = "users:auth"
	}
	if cfg.CatalogTTL == 0 {
		cfg.CatalogTTL = time.Minute
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:       rdb,
		usersHashKey: cfg.UsersHashKey,
		catalogTTL:   cfg.CatalogTTL,
	}, nil
}

func authCacheKey(email, passwordHash string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":" + passwordHash))
}

// GetUserIDByAuth is the fast path of basic auth; a miss falls through to
// the database.
func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	userIDStr, err := v.client.HGet(ctx, v.usersHashKey, authCacheKey(email, passwordHash)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

func (v *ValkeyClient) StoreUserAuth(ctx context.Context, email, passwordHash string, userID int64) error {
	return v.client.HSet(ctx, v.usersHashKey, authCacheKey(email, passwordHash), strconv.FormatInt(userID, 10)).Err()
}

// GetCatalogPage returns the cached raw JSON for a catalog page, or ok=false
// on a miss. Cache errors degrade to a miss.
func (v *ValkeyClient) GetCatalogPage(ctx context.Context, key string) ([]byte, bool) {
	data, err := v.client.Get(ctx, "catalog:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (v *ValkeyClient) StoreCatalogPage(ctx context.Context, key string, payload []byte) error {
	return v.client.Set(ctx, "catalog:"+key, payload, v.catalogTTL).Err()
}

// InvalidateCatalog drops every cached catalog page after an admin write.
func (v *ValkeyClient) InvalidateCatalog(ctx context.Context) error {
	iter := v.client.Scan(ctx, 0, "catalog:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := v.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
