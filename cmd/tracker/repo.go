package main

import (
	"fmt"

	"github.com/jrsteele09/evangelism-tracker/internal/config"
	"github.com/jrsteele09/evangelism-tracker/sessions"
	"github.com/jrsteele09/evangelism-tracker/sessions/filerepo"
	"github.com/jrsteele09/evangelism-tracker/sessions/redisrepo"
	fakesessionrepo "github.com/jrsteele09/evangelism-tracker/sessions/repofakes"
	"github.com/redis/go-redis/v9"
)

func newSessionRepo(cfg config.StorageConfig) (sessions.Repo, func(), error) {
	switch cfg.GetSessionBackend() {
	case config.BackendMemory:
		return fakesessionrepo.NewFakeSessionRepo(), func() {}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		return redisrepo.New(client, cfg.GetRedisPrefix()), func() { _ = client.Close() }, nil
	default:
		repo, err := filerepo.New(cfg.GetSessionDir())
		if err != nil {
			return nil, nil, fmt.Errorf("[tracker newSessionRepo] %w", err)
		}
		return repo, func() {}, nil
	}
}
