// End-to-end tests over the assembled server: writes through every HTTP
// surface reach listeners on the change stream.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"firebase-kit/internal/auth/testutil"
	"firebase-kit/internal/config"
	"firebase-kit/internal/di"
	"firebase-kit/internal/server"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"
)

type ChangeStreamSuite struct {
	suite.Suite
	container *di.Container
	base      string
	shutdown  func() error
}

func TestChangeStreamSuite(t *testing.T) {
	suite.Run(t, new(ChangeStreamSuite))
}

func (s *ChangeStreamSuite) SetupTest() {
	cfg := &config.Config{
		Server: config.ServerConfig{WebSocketPrefix: "/ws/v1", CORSOrigins: "*"},
		Backends: config.BackendConfig{
			DocStore: config.BackendMemory,
			Auth:     config.BackendMemory,
			Realtime: config.BackendMemory,
			Blob:     config.BackendMemory,
		},
		Auth: *testutil.Config(),
		Blob: config.BlobConfig{DownloadURLTTL: time.Minute},
	}

	s.container = di.NewContainer(cfg, logger.NopLogger{})
	s.Require().NoError(s.container.Initialize(context.Background()))

	app := server.NewApp(cfg, s.container, logger.NopLogger{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	go func() { _ = app.Listener(ln) }()

	s.base = ln.Addr().String()
	s.shutdown = app.Shutdown
}

func (s *ChangeStreamSuite) TearDownTest() {
	_ = s.shutdown()
	_ = s.container.Close()
}

func (s *ChangeStreamSuite) listen(query string) *fastws.Conn {
	conn, _, err := fastws.DefaultDialer.Dial("ws://"+s.base+"/ws/v1/listen"+query, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	s.readFrame(conn)
	s.Require().Eventually(func() bool {
		return s.container.EventBus.GetSubscriberCount(eventbus.AllEvents) > 0
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func (s *ChangeStreamSuite) readFrame(conn *fastws.Conn) json.RawMessage {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	var frame []json.RawMessage
	s.Require().NoError(conn.ReadJSON(&frame))
	s.Require().Len(frame, 2)
	s.Require().JSONEq("true", string(frame[0]))
	return frame[1]
}

func (s *ChangeStreamSuite) readEvent(conn *fastws.Conn) eventbus.Event {
	var event eventbus.Event
	s.Require().NoError(json.Unmarshal(s.readFrame(conn), &event))
	return event
}

func (s *ChangeStreamSuite) send(method, path, contentType, body string) int {
	req, err := http.NewRequest(method, "http://"+s.base+path, strings.NewReader(body))
	s.Require().NoError(err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func (s *ChangeStreamSuite) TestEveryProductReachesUnfilteredListener() {
	conn := s.listen("")

	s.Equal(http.StatusCreated, s.send(http.MethodPost, "/v1/docs/users/ada", "application/json", `{"name":"Ada"}`))
	s.Equal(http.StatusOK, s.send(http.MethodPut, "/v1/rtdb/rooms/r1", "application/json", `{"title":"Go"}`))
	s.Equal(http.StatusCreated, s.send(http.MethodPut, "/v1/storage/objects/a.txt", "text/plain", "hi"))

	got := []string{}
	for range 3 {
		e := s.readEvent(conn)
		got = append(got, fmt.Sprintf("%s %s %s", e.Source, e.Type, e.Path))
	}
	s.Equal([]string{
		"docstore document.created users/ada",
		"realtime realtime.set rooms/r1",
		"blobstore blob.uploaded a.txt",
	}, got)
}

func (s *ChangeStreamSuite) TestPrefixFilterOnRealtimeTree() {
	conn := s.listen("?path=rooms/r1&source=realtime")

	s.Equal(http.StatusOK, s.send(http.MethodPut, "/v1/rtdb/rooms/r2", "application/json", `1`))
	s.Equal(http.StatusCreated, s.send(http.MethodPost, "/v1/docs/rooms/r1", "application/json", `{}`))
	s.Equal(http.StatusCreated, s.send(http.MethodPost, "/v1/rtdb/rooms/r1/messages", "application/json", `"hello"`))

	e := s.readEvent(conn)
	s.Equal(eventbus.EventTypeValuePushed, e.Type)
	s.True(strings.HasPrefix(e.Path, "rooms/r1/messages/"))
	s.Equal("hello", e.Data["value"])
}

func TestChangeStream_UpgradeRequired(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{WebSocketPrefix: "/ws/v1", CORSOrigins: "*"},
		Backends: config.BackendConfig{DocStore: config.BackendMemory, Auth: config.BackendMemory, Realtime: config.BackendMemory, Blob: config.BackendMemory},
		Auth:     *testutil.Config(),
	}
	container := di.NewContainer(cfg, nil)
	require.NoError(t, container.Initialize(context.Background()))
	app := server.NewApp(cfg, container, nil)

	tests := []struct {
		name           string
		headers        map[string]string
		expectedStatus int
	}{
		{name: "plain GET", expectedStatus: http.StatusUpgradeRequired},
		{name: "upgrade without websocket", headers: map[string]string{"Connection": "Upgrade", "Upgrade": "h2c"}, expectedStatus: http.StatusUpgradeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/ws/v1/listen", nil)
			require.NoError(t, err)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
