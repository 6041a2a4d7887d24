package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/smarthouse-core/internal/device"
	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthouse-core/migrations"
)

var errRelayStuck = errors.New("relay stuck")

type fixture struct {
	srv    *Server
	house  *house.SmartHouse
	driver *device.StaticSwitchDriver
	repo   *house.SQLiteRepository
}

// testServer builds a server over a three-device house backed by an
// in-memory database.
//
//	bedroom/lamp        smart socket, Inactive
//	kitchen/air_temp    temp sensor, Good 294.15 K
//	kitchen/kettle      smart socket, Unknown
func testServer(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	repo := house.NewSQLiteRepository(db.DB)

	driver := device.NewStaticSwitchDriver(nil)

	lamp := device.RestoreSmartSocket("sock-02", device.SocketInactive, nil)
	lamp.SetSwitchDriver(driver)
	kettle := device.NewSmartSocket("sock-01")
	kettle.SetSwitchDriver(driver)
	sensor := device.RestoreTempSensor("ts-01", device.SensorGood, &device.Temperature{Kelvin: 294.15})

	h := house.New()
	h.AddDevice("bedroom", "lamp", lamp)
	h.AddDevice("kitchen", "air_temp", sensor)
	h.AddDevice("kitchen", "kettle", kettle)

	if err := h.SaveTo(context.Background(), repo); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	log := logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", io.Discard)

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  log,
		House:   h,
		Repo:    repo,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &fixture{srv: srv, house: h, driver: driver, repo: repo}
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestNew_RequiresDeps(t *testing.T) {
	log := logging.NewWithWriter(config.LoggingConfig{}, "test", io.Discard)

	if _, err := New(Deps{House: house.New()}); err == nil {
		t.Error("New() without logger: want error")
	}
	if _, err := New(Deps{Logger: log}); err == nil {
		t.Error("New() without house: want error")
	}
}

func TestHandleHealth(t *testing.T) {
	f := testServer(t)

	rec := f.do(t, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" || body["version"] != "test" || body["devices"] != float64(3) {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	f := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc123" {
		t.Errorf("X-Request-ID = %q, want abc123", got)
	}
}

func TestHandleReport(t *testing.T) {
	f := testServer(t)

	rec := f.do(t, http.MethodGet, "/api/v1/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decode[reportBody](t, rec)
	want := []string{
		"{ location: lamp@bedroom, state: Inactive, power: ?, smart_socket: sock-02 }",
		"{ location: air_temp@kitchen, state: Good, temp: 294.15 K, temp_sensor: ts-01 }",
		"{ location: kettle@kitchen, state: Unknown, power: ?, smart_socket: sock-01 }",
	}
	if body.Count != len(want) {
		t.Errorf("count = %d, want %d", body.Count, len(want))
	}
	for i := range want {
		if i >= len(body.Lines) || body.Lines[i] != want[i] {
			t.Errorf("lines = %q, want %q", body.Lines, want)
			break
		}
	}
}

func TestHandleListDevices(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNames  []string
	}{
		{"all", "", http.StatusOK, []string{"lamp", "air_temp", "kettle"}},
		{"sockets", "?kind=smart_socket", http.StatusOK, []string{"lamp", "kettle"}},
		{"sensors", "?kind=temp_sensor", http.StatusOK, []string{"air_temp"}},
		{"unknown kind", "?kind=toaster", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testServer(t)

			rec := f.do(t, http.MethodGet, "/api/v1/devices/"+tt.query)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			body := decode[struct {
				Devices []house.Status `json:"devices"`
				Count   int            `json:"count"`
			}](t, rec)
			if body.Count != len(tt.wantNames) || len(body.Devices) != len(tt.wantNames) {
				t.Fatalf("got %d devices, want %d", len(body.Devices), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if body.Devices[i].Name != name {
					t.Errorf("devices[%d].Name = %q, want %q", i, body.Devices[i].Name, name)
				}
			}
		})
	}
}

func TestHandleGetDevice(t *testing.T) {
	f := testServer(t)

	rec := f.do(t, http.MethodGet, "/api/v1/devices/kitchen/air_temp")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	st := decode[house.Status](t, rec)
	if st.Kind != device.KindTempSensor || !st.Valid || st.Kelvin == nil || *st.Kelvin != 294.15 {
		t.Errorf("status = %+v", st)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/devices/garage/door")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing device status = %d, want 404", rec.Code)
	}
	if e := decode[Error](t, rec); e.Code != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeNotFound)
	}
}

func TestHandleDeleteDevice(t *testing.T) {
	f := testServer(t)
	ctx := context.Background()

	rec := f.do(t, http.MethodDelete, "/api/v1/devices/kitchen/kettle")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	if _, err := f.house.Device("kitchen", "kettle"); !errors.Is(err, house.ErrDeviceNotFound) {
		t.Errorf("Device() after delete error = %v, want ErrDeviceNotFound", err)
	}
	records, err := f.repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("stored records = %d, want 2", len(records))
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/devices/kitchen/kettle")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteDevice_NotYetStored(t *testing.T) {
	f := testServer(t)
	ctx := context.Background()

	if err := f.repo.Delete(ctx, "kitchen", "kettle"); err != nil {
		t.Fatalf("repo.Delete() error = %v", err)
	}

	rec := f.do(t, http.MethodDelete, "/api/v1/devices/kitchen/kettle")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body %s)", rec.Code, rec.Body.String())
	}
	if _, err := f.house.Device("kitchen", "kettle"); !errors.Is(err, house.ErrDeviceNotFound) {
		t.Errorf("Device() after delete error = %v, want ErrDeviceNotFound", err)
	}
}

func TestHandleTurnDevice(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		outcome    error
		wantStatus int
		wantCode   string
		wantState  string
	}{
		{"inactive socket turns on", "/api/v1/devices/bedroom/lamp/turn", nil, http.StatusOK, "", "active"},
		{"unknown socket", "/api/v1/devices/kitchen/kettle/turn", nil, http.StatusConflict, ErrCodeConflict, "unknown"},
		{"driver failure", "/api/v1/devices/bedroom/lamp/turn", errRelayStuck, http.StatusConflict, ErrCodeConflict, "failure"},
		{"sensor", "/api/v1/devices/kitchen/air_temp/turn", nil, http.StatusUnprocessableEntity, ErrCodeNotSwitchable, ""},
		{"missing", "/api/v1/devices/garage/door/turn", nil, http.StatusNotFound, ErrCodeNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testServer(t)
			f.driver.SetOutcome(tt.outcome)

			rec := f.do(t, http.MethodPost, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				st := decode[house.Status](t, rec)
				if st.State != tt.wantState {
					t.Errorf("state = %q, want %q", st.State, tt.wantState)
				}
				return
			}

			e := decode[Error](t, rec)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
			if e.State != tt.wantState {
				t.Errorf("error state = %q, want %q", e.State, tt.wantState)
			}
		})
	}
}

func TestHandleTurnDevice_TogglesBack(t *testing.T) {
	f := testServer(t)

	for _, want := range []string{"active", "inactive"} {
		rec := f.do(t, http.MethodPost, "/api/v1/devices/bedroom/lamp/turn")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if st := decode[house.Status](t, rec); st.State != want {
			t.Errorf("state = %q, want %q", st.State, want)
		}
	}

	cmds := f.driver.Commands()
	if len(cmds) != 2 || !cmds[0].On || cmds[1].On {
		t.Errorf("commands = %+v, want on then off", cmds)
	}
}

func TestWebSocket_Origin(t *testing.T) {
	tests := []struct {
		name    string
		origin  func(ts *httptest.Server) string
		allowed []string
		wantOK  bool
	}{
		{"no origin header", func(*httptest.Server) string { return "" }, nil, true},
		{"same host", func(ts *httptest.Server) string { return ts.URL }, nil, true},
		{"foreign origin", func(*httptest.Server) string { return "http://evil.example" }, nil, false},
		{"listed origin", func(*httptest.Server) string { return "http://panel.local" }, []string{"http://panel.local"}, true},
		{"wildcard", func(*httptest.Server) string { return "http://evil.example" }, []string{"*"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testServer(t)
			f.srv.wsCfg.AllowedOrigins = tt.allowed
			ts := httptest.NewServer(f.srv.Handler())
			defer ts.Close()

			header := http.Header{}
			if origin := tt.origin(ts); origin != "" {
				header.Set("Origin", origin)
			}
			url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if resp != nil {
				resp.Body.Close()
			}

			if tt.wantOK {
				if err != nil {
					t.Fatalf("Dial() error = %v", err)
				}
				conn.Close()
				return
			}
			if err == nil {
				conn.Close()
				t.Fatal("Dial() succeeded, want rejected origin")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("Dial() response = %v, want 403", resp)
			}
		})
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck // Test deadline
	var msg Envelope
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func subscribeWS(t *testing.T, conn *websocket.Conn, channels ...string) {
	t.Helper()
	payload, _ := json.Marshal(ChannelList{Channels: channels})
	if err := conn.WriteJSON(Envelope{Type: MsgSubscribe, ID: "1", Data: payload}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if msg := readWS(t, conn); msg.Type != MsgAck || msg.ID != "1" {
		t.Fatalf("subscribe reply = %+v", msg)
	}
}

func TestWebSocket_ReportBroadcast(t *testing.T) {
	f := testServer(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	subscribeWS(t, conn, ChannelReport)

	f.srv.BroadcastReport()

	msg := readWS(t, conn)
	if msg.Type != MsgEvent || msg.Event != ChannelReport {
		t.Fatalf("event = %+v", msg)
	}
	var body reportBody
	if err := json.Unmarshal(msg.Data, &body); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if body.Count != 3 || len(body.Lines) != 3 {
		t.Errorf("report payload = %+v", body)
	}
}

func TestWebSocket_TurnBroadcast(t *testing.T) {
	f := testServer(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	subscribeWS(t, conn, ChannelDevice)

	resp, err := http.Post(ts.URL+"/api/v1/devices/bedroom/lamp/turn", "application/json", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	resp.Body.Close()

	msg := readWS(t, conn)
	if msg.Event != ChannelDevice {
		t.Fatalf("event = %+v", msg)
	}
	var st house.Status
	if err := json.Unmarshal(msg.Data, &st); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if st.Name != "lamp" || st.State != "active" {
		t.Errorf("broadcast status = %+v", st)
	}
}

func TestWebSocket_Messages(t *testing.T) {
	f := testServer(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)

	tests := []struct {
		name     string
		send     string
		wantType string
	}{
		{"ping", `{"type":"ping","id":"p1"}`, MsgPong},
		{"unknown type", `{"type":"dance","id":"d1"}`, MsgError},
		{"bad json", `{not json`, MsgError},
		{"subscribe without channels", `{"type":"subscribe","id":"s1"}`, MsgError},
		{"unsubscribe", `{"type":"unsubscribe","id":"u1","data":{"channels":["house.report"]}}`, MsgAck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.send)); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			if msg := readWS(t, conn); msg.Type != tt.wantType {
				t.Errorf("reply type = %q, want %q", msg.Type, tt.wantType)
			}
		})
	}
}

func TestHub_UnsubscribedClientsSkipped(t *testing.T) {
	f := testServer(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts)
	subscribeWS(t, conn, ChannelDevice)

	f.srv.BroadcastReport()
	f.srv.hub.Broadcast(ChannelDevice, map[string]string{"marker": "x"})

	// The report event is never queued, so the first event is the marker.
	msg := readWS(t, conn)
	if msg.Event != ChannelDevice {
		t.Errorf("first event = %q, want %q", msg.Event, ChannelDevice)
	}
}

func TestServer_StartClose(t *testing.T) {
	f := testServer(t)
	ctx := context.Background()

	if err := f.srv.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Start: want error")
	}
	if err := f.srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.srv.Start(ctx); err == nil {
		t.Error("second Start(): want error")
	}
	if err := f.srv.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	resp, err := http.Get("http://" + f.srv.Addr() + "/api/v1/health")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := f.srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if f.srv.Addr() != "" {
		t.Errorf("Addr() after Close = %q, want empty", f.srv.Addr())
	}
	if err := f.srv.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
