package app

import (
	"strings"
	"time"

	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
	"github.com/raizapp/fleetops-backend/internal/utils"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	CacheTTL       time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	originsRaw := utils.GetEnv("ALLOWED_ORIGINS", "*", log)
	cacheTTLSeconds := utils.GetEnvAsInt("SNAPSHOT_CACHE_TTL", 120, log)

	var origins []string
	for _, origin := range strings.Split(originsRaw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return Config{
		Port:           port,
		AllowedOrigins: origins,
		CacheTTL:       time.Duration(cacheTTLSeconds) * time.Second,
	}
}
