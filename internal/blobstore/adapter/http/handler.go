package http

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"firebase-kit/internal/blobstore/domain/model"
	"firebase-kit/internal/blobstore/usecase"
	"firebase-kit/internal/shared/outcome"
	"firebase-kit/internal/shared/utils"
)

// lastModifiedLayout is the IMF-fixdate form HTTP dates use
const lastModifiedLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// TokenResolver exchanges a download token for the object it grants. The
// memory backend implements it to serve the URLs it issues.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*model.Blob, error)
}

// StorageHandler exposes the blob store wrapper over HTTP:
//
//	PUT    /objects/a/b.png   upload the raw body
//	POST   /objects           multipart upload (file, optional name)
//	GET    /objects/a/b.png   download the content
//	DELETE /objects/a/b.png   delete
//	GET    /urls/a/b.png      download URL (?ttl=10m)
//	GET    /raw/:token        serve a memory download URL
type StorageHandler struct {
	store    *usecase.Store
	resolver TokenResolver
}

// NewStorageHandler creates a handler. resolver may be nil when the backend
// issues its own URLs.
func NewStorageHandler(store *usecase.Store, resolver TokenResolver) *StorageHandler {
	return &StorageHandler{store: store, resolver: resolver}
}

// RegisterRoutes mounts the handler on router
func (h *StorageHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/objects", h.UploadMultipart)
	router.Put("/objects/*", h.Upload)
	router.Get("/objects/*", h.Download)
	router.Delete("/objects/*", h.Delete)
	router.Get("/urls/*", h.DownloadURL)
}

// RegisterRawRoute mounts /raw/:token when the backend issues token URLs.
// It is kept apart from RegisterRoutes because token URLs carry no other
// credentials.
func (h *StorageHandler) RegisterRawRoute(router fiber.Router) {
	if h.resolver != nil {
		router.Get("/raw/:token", h.Raw)
	}
}

func (h *StorageHandler) Upload(c *fiber.Ctx) error {
	body := bytes.NewReader(c.Body())
	return utils.Respond(c, h.store.Upload(c.UserContext(), c.Params("*"), body, c.Get(fiber.HeaderContentType)), fiber.StatusCreated)
}

func (h *StorageHandler) UploadMultipart(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "multipart field \"file\" is required")
	}
	name := c.FormValue("name", header.Filename)

	f, err := header.Open()
	if err != nil {
		return utils.BadRequest(c, "uploaded file could not be read")
	}
	defer f.Close()

	return utils.Respond(c, h.store.Upload(c.UserContext(), name, f, header.Header.Get(fiber.HeaderContentType)), fiber.StatusCreated)
}

func (h *StorageHandler) Download(c *fiber.Ctx) error {
	return sendBlob(c, h.store.Download(c.UserContext(), c.Params("*")))
}

func (h *StorageHandler) Delete(c *fiber.Ctx) error {
	return utils.Respond(c, h.store.Delete(c.UserContext(), c.Params("*")), fiber.StatusOK)
}

func (h *StorageHandler) DownloadURL(c *fiber.Ctx) error {
	var ttl time.Duration
	if raw := c.Query("ttl"); raw != "" {
		parsed, err := parseTTL(raw)
		if err != nil {
			return utils.BadRequest(c, "ttl must be a duration such as 10m or a number of seconds")
		}
		ttl = parsed
	}
	return utils.Respond(c, h.store.DownloadURL(c.UserContext(), c.Params("*"), ttl), fiber.StatusOK)
}

func (h *StorageHandler) Raw(c *fiber.Ctx) error {
	const op = "blobstore.raw"
	out := outcome.Capture(op, func() (*model.Blob, error) {
		return h.resolver.Resolve(c.UserContext(), c.Params("token"))
	})
	return sendBlob(c, out)
}

func sendBlob(c *fiber.Ctx, out outcome.Outcome[*model.Blob]) error {
	if !out.OK {
		return utils.Respond(c, out, fiber.StatusOK)
	}
	c.Set(fiber.HeaderContentType, out.Payload.ContentType)
	if !out.Payload.Updated.IsZero() {
		c.Set(fiber.HeaderLastModified, out.Payload.Updated.UTC().Format(lastModifiedLayout))
	}
	return c.Status(fiber.StatusOK).Send(out.Payload.Data)
}

func parseTTL(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(raw)
}
