package shared

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

var (
	successResponse       = mustMarshal(Response{Code: 200, Message: "Success"})
	createdResponse       = mustMarshal(Response{Code: 201, Message: "Created"})
	badRequestResponse    = mustMarshal(Response{Code: 400, Message: "Bad Request"})
	unauthorizedResponse  = mustMarshal(Response{Code: 401, Message: "Unauthorized"})
	notFoundResponse      = mustMarshal(Response{Code: 404, Message: "Not Found"})
	internalErrorResponse = mustMarshal(Response{Code: 500, Message: "Internal Server Error"})
)

func mustMarshal(v interface{}) []byte {
	b, _ := jsonAPI.Marshal(v)
	return b
}

func writeRaw(c *fiber.Ctx, httpCode int, body []byte) error {
	c.Set(fiber.HeaderContentType, "application/json; charset=utf-8")
	return c.Status(httpCode).Send(body)
}

func ResponseJSON(c *fiber.Ctx, httpCode int, message string, data interface{}) error {
	if data == nil {
		switch {
		case httpCode == 200 && message == "Success":
			return writeRaw(c, httpCode, successResponse)
		case httpCode == 201 && message == "Created":
			return writeRaw(c, httpCode, createdResponse)
		case httpCode == 400 && message == "Bad Request":
			return writeRaw(c, httpCode, badRequestResponse)
		case httpCode == 401 && message == "Unauthorized":
			return writeRaw(c, httpCode, unauthorizedResponse)
		case httpCode == 404 && message == "Not Found":
			return writeRaw(c, httpCode, notFoundResponse)
		case httpCode == 500 && message == "Internal Server Error":
			return writeRaw(c, httpCode, internalErrorResponse)
		}
	}

	body, err := jsonAPI.Marshal(Response{
		Code:    httpCode,
		Message: message,
		Data:    data,
	})
	if err != nil {
		return writeRaw(c, fiber.StatusInternalServerError, internalErrorResponse)
	}
	return writeRaw(c, httpCode, body)
}

func ResponseOK(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, 200, "Success", data)
}

func ResponseCreated(c *fiber.Ctx, data interface{}) error {
	return ResponseJSON(c, 201, "Created", data)
}

func ResponseNotFound(c *fiber.Ctx) error {
	return ResponseJSON(c, 404, "Not Found", nil)
}

func ResponseUnauthorized(c *fiber.Ctx) error {
	return ResponseJSON(c, 401, "Unauthorized", nil)
}

func ResponseBadRequest(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Bad Request"
	}
	return ResponseJSON(c, 400, message, nil)
}

func ResponseInternalError(c *fiber.Ctx, err error) error {
	return ResponseJSON(c, 500, "Internal Server Error", err.Error())
}
