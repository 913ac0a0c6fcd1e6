package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SessionBackend selects where the persisted session record lives.
type SessionBackend string

const (
	BackendFile   SessionBackend = "file"
	BackendRedis  SessionBackend = "redis"
	BackendMemory SessionBackend = "memory"
)

type StorageConfig interface {
	GetSessionBackend() SessionBackend
	GetSessionDir() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetSessionBackend() SessionBackend {
	switch b := SessionBackend(strings.ToLower(GetEnv("SESSION_BACKEND", string(BackendFile)))); b {
	case BackendFile, BackendRedis, BackendMemory:
		return b
	default:
		return BackendFile
	}
}

func (Storage) GetSessionDir() string {
	if dir := GetEnv("SESSION_DIR", ""); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evangelism-tracker"
	}
	return filepath.Join(home, ".evangelism-tracker")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	db, err := strconv.Atoi(GetEnv("REDIS_DB", "0"))
	if err != nil || db < 0 {
		return 0
	}
	return db
}

func (Storage) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "tracker:session:")
}
