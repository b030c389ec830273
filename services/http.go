package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/82deutschmark/Disavowed/services/handlers"
	"github.com/82deutschmark/Disavowed/shared"
)

type HttpService struct {
	context.DefaultService

	authMw        *AuthMiddleware
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authMw = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	authHandler := handlers.NewAuthHandler(
		svc.Service(AUTH_SVC).(*AuthService),
		svc.Service(PROGRESS_SVC).(*ProgressService),
	)
	guestHandler := handlers.NewGuestHandler(
		svc.Service(PROGRESS_SVC).(*ProgressService),
	)
	gameHandler := handlers.NewGameHandler(
		svc.Service(MISSION_SVC).(*MissionService),
		svc.Service(ENGINE_SVC).(*EngineService),
		svc.Service(PROGRESS_SVC).(*ProgressService),
		svc.Service(STORY_SVC).(*StoryService),
		svc.Service(SCENE_SVC).(*SceneService),
	)
	mediaHandler := handlers.NewMediaHandler(
		svc.Service(SCENE_SVC).(*SceneService),
	)

	app := fiber.New(fiber.Config{
		AppName:      "Disavowed API",
		ErrorHandler: svc.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + shared.PlayerHeader,
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	auth := v1.Group("/auth")
	auth.Post("/register", svc.rateLimitSvc.Middleware("register"), authHandler.Register)
	auth.Post("/login", svc.rateLimitSvc.Middleware("login"), authHandler.Login)
	auth.Post("/merge", svc.authMw.RequiredAuth(), authHandler.MergeProgress)

	guest := v1.Group("/guest")
	guest.Post("/session", svc.rateLimitSvc.Middleware("guest_session"), guestHandler.CreateSession)

	game := v1.Group("/game", svc.authMw.PlayerContext())
	game.Post("/missions/full", svc.rateLimitSvc.Middleware("mission_create"), gameHandler.CreateFullMission)
	game.Post("/missions", svc.rateLimitSvc.Middleware("mission_create"), gameHandler.CreateMission)
	game.Get("/missions/:missionId", gameHandler.GetMission)
	game.Post("/missions/:missionId/start", svc.rateLimitSvc.Middleware("mission_create"), gameHandler.StartMissionStory)
	game.Post("/missions/:missionId/complete", gameHandler.CompleteMission)
	game.Post("/missions/:missionId/fail", gameHandler.FailMission)
	game.Get("/node", gameHandler.GetCurrentNode)
	game.Post("/choice", svc.rateLimitSvc.Middleware("choice"), gameHandler.SubmitChoice)
	game.Post("/choice/custom", svc.rateLimitSvc.Middleware("custom_choice"), gameHandler.SubmitCustomChoice)
	game.Get("/choice/:choiceId/affordability", gameHandler.CheckAffordability)
	game.Get("/progress", gameHandler.GetProgress)
	game.Get("/transactions", gameHandler.GetTransactions)
	game.Get("/characters", gameHandler.ListCharacters)
	game.Get("/characters/:characterId", gameHandler.GetCharacter)

	media := v1.Group("/media", svc.authMw.PlayerContext())
	media.Post("/scenes", mediaHandler.UploadScene)
	media.Get("/scenes/random", mediaHandler.RandomScene)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseOK(c, "pong")
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
