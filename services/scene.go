package services

import (
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/82deutschmark/Disavowed/dto"
	"github.com/82deutschmark/Disavowed/model"
	"github.com/82deutschmark/Disavowed/shared"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SceneService pairs story nodes with illustration images. Images are
// uploaded out of band and served to clients as short-lived presigned URLs;
// a node gets a random image matching no particular scene for now.
type SceneService struct {
	appContext.DefaultService

	store    GameStore
	minioSvc *MinIOService

	urlExpiry time.Duration
}

const SCENE_SVC = "scene_svc"

func (svc SceneService) Id() string {
	return SCENE_SVC
}

func (svc *SceneService) Configure(ctx *appContext.Context) error {
	svc.store = svc.Service(POSTGRES_SVC).(*PostgresService).Store()
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	svc.urlExpiry = 1 * time.Hour
	return svc.DefaultService.Configure(ctx)
}

func (svc *SceneService) Start() error {
	return nil
}

// Upload stores an image and its metadata row.
func (svc *SceneService) Upload(name, sceneType, setting string, reader io.Reader, size int64, contentType string) (*model.SceneImage, error) {
	format := strings.TrimPrefix(path.Ext(name), ".")
	objectKey := "scenes/" + uuid.NewString()
	if format != "" {
		objectKey += "." + format
	}

	if _, err := svc.minioSvc.UploadFile(objectKey, reader, size, contentType); err != nil {
		return nil, shared.NewInternalError(err, "failed to store scene image")
	}

	scene := &model.SceneImage{
		ID:        uuid.NewString(),
		Name:      name,
		ObjectKey: objectKey,
		Format:    format,
		SizeBytes: size,
		SceneType: sceneType,
		Setting:   setting,
	}
	if err := svc.store.CreateSceneImage(scene); err != nil {
		if delErr := svc.minioSvc.DeleteFile(objectKey); delErr != nil {
			log.WithError(delErr).Warn("Failed to clean up orphaned scene object")
		}
		return nil, err
	}
	return scene, nil
}

// RandomScene picks any stored image and presigns it for the client.
// Returns nil without error when the catalog is empty; a missing
// illustration never blocks the story.
func (svc *SceneService) RandomScene() (*dto.SceneImageResponse, error) {
	scene, err := svc.store.RandomSceneImage()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	url, err := svc.minioSvc.GetFileURL(scene.ObjectKey, svc.urlExpiry)
	if err != nil {
		log.WithError(err).Warn("Failed to presign scene image")
		return nil, nil
	}

	return &dto.SceneImageResponse{
		ID:        scene.ID,
		Name:      scene.Name,
		URL:       url,
		SceneType: scene.SceneType,
		Setting:   scene.Setting,
	}, nil
}
