package main

import (
	"github.com/82deutschmark/Disavowed/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},

		&services.JWTService{},
		&services.AuthMiddleware{},
		&services.RateLimitService{},

		&services.OpenAIService{},
		&services.LedgerService{},
		&services.StoryService{},
		&services.EngineService{},
		&services.MissionService{},
		&services.ProgressService{},
		&services.AuthService{},
		&services.SceneService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
