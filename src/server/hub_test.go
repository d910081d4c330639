package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"currency-observer/src/helpers"
	"currency-observer/src/logger"
	"currency-observer/src/models"
	"currency-observer/src/registry"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Fakes and helpers
// -----------------------------------------------------------------------------

type fakeStatus struct {
	lastCycle  int64
	currencies []models.MCurrencyInfo
}

func (f *fakeStatus) LastCycleAt() int64 { return f.lastCycle }

func (f *fakeStatus) Currencies() []models.MCurrencyInfo { return f.currencies }

func newTestServer() (*Server, *registry.SubscriptionRegistry) {
	cfg := &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     5000,
		LogLevel: "ERROR",
	}
	log := logger.NewLogger("ERROR", "ServerTest")
	reg := registry.NewSubscriptionRegistry(log)
	status := &fakeStatus{
		lastCycle: 42,
		currencies: []models.MCurrencyInfo{
			{Code: "EUR", Name: "Euro", Nominal: 1},
			{Code: "USD", Name: "US Dollar", Nominal: 1},
		},
	}
	return NewServer(cfg, log, reg, status), reg
}

func newTestClient(s *Server, sessionID string, buffer int) *Client {
	client := &Client{
		hub:       s,
		sessionID: sessionID,
		send:      make(chan interface{}, buffer),
	}
	s.addClient(client)
	return client
}

func update(code, current, previous string) models.MRateUpdate {
	return models.MRateUpdate{
		Type:         "update",
		CurrencyCode: code,
		CurrentRate:  decimal.RequireFromString(current),
		PreviousRate: decimal.RequireFromString(previous),
	}
}

// -----------------------------------------------------------------------------
// Delivery tests
// -----------------------------------------------------------------------------

func TestSendToSession_EnqueuesForKnownSession(t *testing.T) {
	assert := require.New(t)
	s, _ := newTestServer()
	client := newTestClient(s, "s1", 4)

	assert.NoError(s.SendToSession("s1", update("USD", "90.0", "89.5")))

	payload := (<-client.send).(models.MRateUpdate)
	assert.Equal("USD", payload.CurrencyCode)
}

func TestSendToSession_UnknownSession(t *testing.T) {
	assert := require.New(t)
	s, _ := newTestServer()

	err := s.SendToSession("ghost", update("USD", "90.0", "89.5"))
	assert.Error(err)

	var deliveryErr *helpers.DeliveryError
	assert.ErrorAs(err, &deliveryErr)
}

func TestSendToSession_FullBufferKeepsRegistration(t *testing.T) {
	assert := require.New(t)
	s, reg := newTestServer()
	newTestClient(s, "s1", 1)
	reg.Register("s1", "USD")

	assert.NoError(s.SendToSession("s1", update("USD", "90.0", "89.5")))
	err := s.SendToSession("s1", update("USD", "90.1", "90.0"))
	assert.Error(err)

	// A slow consumer stays subscribed; only a disconnect removes it
	assert.Equal(1, reg.Len())
}

// -----------------------------------------------------------------------------
// Command handling tests
// -----------------------------------------------------------------------------

func TestHandleClientMessage_SelectRegistersAndAcks(t *testing.T) {
	assert := require.New(t)
	s, reg := newTestServer()
	client := newTestClient(s, "s1", 4)

	s.HandleClientMessage(client, []byte(`{"command":"select_currency","currency_code":"usd"}`))

	entries := reg.SnapshotEntries()
	assert.Len(entries, 1)
	assert.Equal("USD", entries[0].CurrencyCode)

	ack := (<-client.send).(models.MSelectAck)
	assert.Equal("currency_selected", ack.Type)
	assert.Equal("s1", ack.ID)
	assert.Contains(ack.Message, "usd")
}

func TestHandleClientMessage_ReSelectOverwrites(t *testing.T) {
	assert := require.New(t)
	s, reg := newTestServer()
	client := newTestClient(s, "s1", 4)

	s.HandleClientMessage(client, []byte(`{"command":"select_currency","currency_code":"USD"}`))
	s.HandleClientMessage(client, []byte(`{"command":"select_currency","currency_code":"EUR"}`))

	entries := reg.SnapshotEntries()
	assert.Len(entries, 1)
	assert.Equal("EUR", entries[0].CurrencyCode)
}

func TestHandleClientMessage_IgnoresGarbageAndUnknownCommands(t *testing.T) {
	assert := require.New(t)
	s, reg := newTestServer()
	client := newTestClient(s, "s1", 4)

	s.HandleClientMessage(client, []byte(`not json`))
	s.HandleClientMessage(client, []byte(`{"command":"shutdown"}`))
	s.HandleClientMessage(client, []byte(`{"command":"select_currency","currency_code":""}`))

	assert.Zero(reg.Len())
	assert.Empty(client.send)
}

// -----------------------------------------------------------------------------
// Lifecycle tests
// -----------------------------------------------------------------------------

func TestRemoveClient_UnregistersAndClosesOnce(t *testing.T) {
	assert := require.New(t)
	s, reg := newTestServer()
	client := newTestClient(s, "s1", 4)
	reg.Register("s1", "USD")

	s.removeClient(client)

	assert.Zero(reg.Len())
	_, open := <-client.send
	assert.False(open)

	// Second removal must not panic or double-close
	assert.NotPanics(func() { s.removeClient(client) })

	err := s.SendToSession("s1", update("USD", "90.0", "89.5"))
	assert.Error(err)
}

// -----------------------------------------------------------------------------
// HTTP endpoint tests
// -----------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	assert := require.New(t)
	s, _ := newTestServer()
	newTestClient(s, "s1", 1)
	newTestClient(s, "s2", 1)

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	assert.NoError(err)
	defer resp.Body.Close()
	assert.Equal(200, resp.StatusCode)

	var body struct {
		Status       string `json:"status"`
		Connections  int    `json:"connections"`
		LatestUpdate int64  `json:"latest_update"`
	}
	assert.NoError(json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal("ok", body.Status)
	assert.Equal(2, body.Connections)
	assert.Equal(int64(42), body.LatestUpdate)
}

func TestCurrenciesEndpoint(t *testing.T) {
	assert := require.New(t)
	s, _ := newTestServer()

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/currencies")
	assert.NoError(err)
	defer resp.Body.Close()

	var body struct {
		Currencies []models.MCurrencyInfo `json:"currencies"`
	}
	assert.NoError(json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(body.Currencies, 2)
	assert.Equal("EUR", body.Currencies[0].Code)
}

// -----------------------------------------------------------------------------
// End-to-end websocket session
// -----------------------------------------------------------------------------

func TestWebSocket_ConnectSelectDeliverDisconnect(t *testing.T) {
	assert := require.New(t)
	s, reg := newTestServer()

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// 1. Session id is announced on connect
	var hello models.MSessionHello
	assert.NoError(conn.ReadJSON(&hello))
	assert.Equal("client_id", hello.Type)
	assert.NotEmpty(hello.ID)

	// 2. Selecting a currency registers and acks
	assert.NoError(conn.WriteJSON(models.MSelectCommand{
		Command:      "select_currency",
		CurrencyCode: "USD",
	}))

	var ack models.MSelectAck
	assert.NoError(conn.ReadJSON(&ack))
	assert.Equal("currency_selected", ack.Type)
	assert.Equal(hello.ID, ack.ID)

	entries := reg.SnapshotEntries()
	assert.Len(entries, 1)
	assert.Equal(hello.ID, entries[0].SessionID)

	// 3. Targeted delivery reaches the live connection
	assert.NoError(s.SendToSession(hello.ID, update("USD", "90.0", "89.5")))

	var pushed struct {
		Type         string `json:"type"`
		CurrencyCode string `json:"currency_code"`
		CurrentRate  string `json:"current_rate"`
		PreviousRate string `json:"previous_rate"`
	}
	assert.NoError(conn.ReadJSON(&pushed))
	assert.Equal("update", pushed.Type)
	assert.Equal("USD", pushed.CurrencyCode)
	assert.True(decimal.RequireFromString(pushed.CurrentRate).Equal(decimal.RequireFromString("90.0")))
	assert.True(decimal.RequireFromString(pushed.PreviousRate).Equal(decimal.RequireFromString("89.5")))

	// 4. Disconnect unregisters the session
	conn.Close()
	assert.Eventually(func() bool { return reg.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
