package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_gap_board/internal/render"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) render.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame render.Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestHub_KeepsLastFramePerRegion(t *testing.T) {
	hub := NewHub(nil)

	require.NoError(t, hub.Draw(render.ErrorFrame(render.RegionBalances, render.MsgBalancesFailed)))
	require.NoError(t, hub.Draw(render.Frame{Region: render.RegionClock, Kind: render.KindClock, Clock: &render.ClockView{Text: "12:00:00"}}))
	require.NoError(t, hub.Draw(render.Frame{Region: render.RegionBalances, Kind: render.KindBalances, Balances: &render.BalanceView{}}))

	frame, ok := hub.Last(render.RegionBalances)
	require.True(t, ok)
	assert.Equal(t, render.KindBalances, frame.Kind)

	_, ok = hub.Last(render.RegionOrderbook)
	assert.False(t, ok)

	frames := hub.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, render.RegionBalances, frames[0].Region)
	assert.Equal(t, render.RegionClock, frames[1].Region)
}

func TestHub_NewClientReceivesBoardThenUpdates(t *testing.T) {
	hub := NewHub(nil)
	require.NoError(t, hub.Draw(render.ErrorFrame(render.RegionOrderbook, render.MsgOrderbookFailed)))

	conn := dialHub(t, hub)

	first := readFrame(t, conn)
	assert.Equal(t, render.RegionOrderbook, first.Region)
	assert.Equal(t, render.KindError, first.Kind)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Draw(render.Frame{Region: render.RegionClock, Kind: render.KindClock, Clock: &render.ClockView{Text: "09:30:00"}}))
	next := readFrame(t, conn)
	assert.Equal(t, render.KindClock, next.Kind)
	require.NotNil(t, next.Clock)
	assert.Equal(t, "09:30:00", next.Clock.Text)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(nil)
	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()

	assert.Equal(t, 0, hub.Clients())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
