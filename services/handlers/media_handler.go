package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/82deutschmark/Disavowed/shared"
)

type MediaHandler struct {
	sceneSvc SceneServiceInterface
}

func NewMediaHandler(sceneSvc SceneServiceInterface) *MediaHandler {
	return &MediaHandler{
		sceneSvc: sceneSvc,
	}
}

// @Summary Upload Scene Image
// @Description This endpoint stores a scene illustration and its metadata
// @Tags media
// @Accept  mpfd
// @Produce json
// @Param file formData file true "Image file"
// @Param scene_type formData string false "Scene type"
// @Param setting formData string false "Setting description"
// @Success 201 {object} shared.Response{data=model.SceneImage}
// @Router /api/v1/media/scenes [post]
func (h *MediaHandler) UploadScene(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "Image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return shared.NewBadRequestError(err, "Failed to read image file")
	}
	defer file.Close()

	scene, err := h.sceneSvc.Upload(
		fileHeader.Filename,
		c.FormValue("scene_type"),
		c.FormValue("setting"),
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", scene)
}

// @Summary Random Scene Image
// @Description This endpoint returns a random scene illustration with a presigned URL
// @Tags media
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SceneImageResponse}
// @Router /api/v1/media/scenes/random [get]
func (h *MediaHandler) RandomScene(c *fiber.Ctx) error {
	scene, err := h.sceneSvc.RandomScene()
	if err != nil {
		return err
	}
	if scene == nil {
		return shared.ResponseNotFound(c)
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", scene)
}
