package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firebase-kit/internal/realtime/adapter/memory"
	"firebase-kit/internal/realtime/usecase"
)

func setupApp() *fiber.App {
	app := fiber.New()
	NewDatabaseHandler(usecase.NewDatabase(memory.NewDatabase(), nil, nil)).RegisterRoutes(app.Group("/v1/rtdb"))
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out []interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestDatabaseHandler_Lifecycle(t *testing.T) {
	app := setupApp()

	status, _ := do(t, app, http.MethodPut, "/v1/rtdb/rooms/r1", `{"title":"Go"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPatch, "/v1/rtdb/rooms/r1", `{"open":true}`)
	require.Equal(t, http.StatusOK, status)

	status, out := do(t, app, http.MethodPost, "/v1/rtdb/rooms/r1/messages", `"hi"`)
	require.Equal(t, http.StatusCreated, status)
	key := out[1].(string)

	_, out = do(t, app, http.MethodGet, "/v1/rtdb/rooms/r1/messages/"+key, "")
	assert.Equal(t, []interface{}{true, "hi"}, out)

	_, out = do(t, app, http.MethodGet, "/v1/rtdb/rooms/r1/title", "")
	assert.Equal(t, []interface{}{true, "Go"}, out)

	status, _ = do(t, app, http.MethodDelete, "/v1/rtdb/rooms", "")
	assert.Equal(t, http.StatusOK, status)

	_, out = do(t, app, http.MethodGet, "/v1/rtdb/rooms", "")
	assert.Equal(t, []interface{}{true, nil}, out)
}

func TestDatabaseHandler_BadRequests(t *testing.T) {
	app := setupApp()

	status, _ := do(t, app, http.MethodPatch, "/v1/rtdb/a", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, out := do(t, app, http.MethodGet, "/v1/rtdb/a.b", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []interface{}{false, "realtime.get failed"}, out)
}
