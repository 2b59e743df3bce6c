package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "TODOAPI_"

// parseEnv overlays TODOAPI_* environment variables. A .env file (or the one
// named by -env) is loaded first; variables already present in the process
// environment win over the file. A missing default .env is not an error.
func parseEnv(config *Config) error {
	if path := flagx.EnvFile(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	strs := map[string]*string{
		"HTTP_ADDR":          &config.EndpointAddrHTTP,
		"GRPC_ADDR":          &config.EndpointAddrGRPC,
		"DATABASE_DSN":       &config.DatabaseDSN,
		"SECRET_KEY":         &config.SecretKey,
		"ISSUER":             &config.Issuer,
		"AUDIENCE":           &config.Audience,
		"PASSWORD_ALGORITHM": &config.PasswordAlgorithm,
		"CACHE_BACKEND":      &config.CacheBackend,
		"REDIS_ADDR":         &config.RedisAddr,
		"REDIS_PASSWORD":     &config.RedisPassword,
		"LOG_BACKEND":        &config.LogBackend,
		"LOG_LEVEL":          &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL":        &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_TTL":       &config.RefreshTokenValidityDuration,
		"CACHE_TTL":               &config.CacheTTL,
		"REFRESH_TOKEN_RETENTION": &config.RefreshTokenRetention,
		"CLEANUP_INTERVAL":        &config.CleanupInterval,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		config.RedisDB = n
	}
	return nil
}
