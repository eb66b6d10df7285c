package http

import (
	"github.com/gofiber/fiber/v2"

	"firebase-kit/internal/realtime/usecase"
	"firebase-kit/internal/shared/utils"
)

// DatabaseHandler exposes the realtime tree over HTTP, one verb per
// wrapper method:
//
//	GET    /rooms/r1         read
//	PUT    /rooms/r1         set
//	PATCH  /rooms/r1         update
//	POST   /rooms/r1/msgs    push
//	DELETE /rooms/r1         delete
type DatabaseHandler struct {
	db *usecase.Database
}

// NewDatabaseHandler creates a handler over db
func NewDatabaseHandler(db *usecase.Database) *DatabaseHandler {
	return &DatabaseHandler{db: db}
}

// RegisterRoutes mounts the handler on router
func (h *DatabaseHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/*", h.Get)
	router.Put("/*", h.Set)
	router.Patch("/*", h.Update)
	router.Post("/*", h.Push)
	router.Delete("/*", h.Delete)
}

func (h *DatabaseHandler) Get(c *fiber.Ctx) error {
	return utils.Respond(c, h.db.Get(c.UserContext(), c.Params("*")), fiber.StatusOK)
}

func (h *DatabaseHandler) Set(c *fiber.Ctx) error {
	var value any
	if err := c.BodyParser(&value); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	return utils.Respond(c, h.db.Set(c.UserContext(), c.Params("*"), value), fiber.StatusOK)
}

func (h *DatabaseHandler) Update(c *fiber.Ctx) error {
	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil {
		return utils.BadRequest(c, "update body must be a JSON object")
	}
	return utils.Respond(c, h.db.Update(c.UserContext(), c.Params("*"), patch), fiber.StatusOK)
}

func (h *DatabaseHandler) Push(c *fiber.Ctx) error {
	var value any
	if err := c.BodyParser(&value); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	return utils.Respond(c, h.db.Push(c.UserContext(), c.Params("*"), value), fiber.StatusCreated)
}

func (h *DatabaseHandler) Delete(c *fiber.Ctx) error {
	return utils.Respond(c, h.db.Delete(c.UserContext(), c.Params("*")), fiber.StatusOK)
}
