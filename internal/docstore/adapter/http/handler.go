package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"firebase-kit/internal/docstore/domain/model"
	"firebase-kit/internal/docstore/usecase"
	"firebase-kit/internal/shared/utils"
)

// DocumentHandler exposes the document store wrapper over HTTP. The wildcard
// path is the collection followed by the nested chain; an odd number of
// segments after the collection ends in the target document id.
//
//	GET    /users             read all (?deep=true&depth=N, ?where=<cel>)
//	GET    /users/u1          read (?exists=true for a boolean)
//	POST   /users             create with a generated id
//	POST   /users/u1          create with id u1
//	PATCH  /users/u1          partial update
//	DELETE /users/u1          delete
//	GET    /users/u1/orders   read all of a sub-collection
type DocumentHandler struct {
	deps usecase.Dependencies
}

// NewDocumentHandler creates a handler building wrappers from deps
func NewDocumentHandler(deps usecase.Dependencies) *DocumentHandler {
	return &DocumentHandler{deps: deps}
}

// RegisterRoutes mounts the handler on router
func (h *DocumentHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/*", h.Get)
	router.Post("/*", h.Create)
	router.Patch("/*", h.Update)
	router.Delete("/*", h.Delete)
}

// target is a parsed wildcard path
type target struct {
	collection *usecase.Collection
	id         string
}

func (h *DocumentHandler) parse(c *fiber.Ctx) (target, bool) {
	var segments []string
	for _, s := range strings.Split(c.Params("*"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return target{}, false
	}

	nested := segments[1:]
	var id string
	if len(nested)%2 == 1 {
		id = nested[len(nested)-1]
		nested = nested[:len(nested)-1]
	}

	c.SetUserContext(utils.WithCollection(c.UserContext(), segments[0]))
	col := usecase.NewCollection(segments[0], h.deps, usecase.WithNestedPath(nested...))
	return target{collection: col, id: id}, true
}

// Get reads one document or lists a collection
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	t, ok := h.parse(c)
	if !ok {
		return utils.BadRequest(c, "collection is required")
	}
	ctx := c.UserContext()

	if t.id != "" {
		if c.QueryBool("exists") {
			return utils.Respond(c, t.collection.Exists(ctx, t.id), fiber.StatusOK)
		}
		return utils.Respond(c, t.collection.Read(ctx, t.id), fiber.StatusOK)
	}

	if where := c.Query("where"); where != "" {
		return utils.Respond(c, t.collection.ReadWhere(ctx, where), fiber.StatusOK)
	}
	if c.QueryBool("deep") {
		depth, err := strconv.Atoi(c.Query("depth", "0"))
		if err != nil || depth < 0 {
			return utils.BadRequest(c, "depth must be a non-negative integer")
		}
		return utils.Respond(c, t.collection.ReadAllDeep(ctx, depth), fiber.StatusOK)
	}
	return utils.Respond(c, t.collection.ReadAll(ctx), fiber.StatusOK)
}

// Create writes a new document
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	t, ok := h.parse(c)
	if !ok {
		return utils.BadRequest(c, "collection is required")
	}
	record, ok := parseRecord(c)
	if !ok {
		return utils.BadRequest(c, "Invalid request body")
	}

	if t.id != "" {
		return utils.Respond(c, t.collection.CreateWithID(c.UserContext(), t.id, record), fiber.StatusCreated)
	}
	return utils.Respond(c, t.collection.Create(c.UserContext(), record), fiber.StatusCreated)
}

// Update merges the body into an existing document
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	t, ok := h.parse(c)
	if !ok || t.id == "" {
		return utils.BadRequest(c, "document path is required")
	}
	patch, ok := parseRecord(c)
	if !ok {
		return utils.BadRequest(c, "Invalid request body")
	}
	return utils.Respond(c, t.collection.Update(c.UserContext(), t.id, patch), fiber.StatusOK)
}

// Delete removes a document
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	t, ok := h.parse(c)
	if !ok || t.id == "" {
		return utils.BadRequest(c, "document path is required")
	}
	return utils.Respond(c, t.collection.Delete(c.UserContext(), t.id), fiber.StatusOK)
}

func parseRecord(c *fiber.Ctx) (model.Record, bool) {
	record := model.Record{}
	if err := c.BodyParser(&record); err != nil {
		return nil, false
	}
	return record, true
}
