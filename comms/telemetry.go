package comms

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/CodedInternet/gotrifan/flightlog"
	"github.com/CodedInternet/gotrifan/onboard"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

const TELEMETRY_WRITE_TIMEOUT = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster pushes a snapshot to every connected websocket client once per
// interval.
type Broadcaster struct {
	*onboard.Worker
	capture flightlog.Source
	logger  *log.Logger

	lock    sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

func NewBroadcaster(capture flightlog.Source, interval time.Duration, logger *log.Logger) (b *Broadcaster) {
	if logger == nil {
		logger = log.Default()
	}

	b = &Broadcaster{
		capture: capture,
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
	b.Worker = onboard.NewWorker("telemetry", interval, b.publish)
	return
}

var errBroadcasterStopped = errors.New("telemetry has stopped")

// Handler upgrades the request and keeps the client registered until it
// disconnects. Anything the client sends is ignored. Once the broadcaster
// has been stopped new clients are refused.
func (b *Broadcaster) Handler(w http.ResponseWriter, r *http.Request) {
	if b.isClosed() {
		render.Render(w, r, ErrUnavailable(errBroadcasterStopped))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Printf("[telemetry][error] upgrade: %v", err)
		return
	}

	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		conn.Close()
		return
	}
	b.clients[conn] = struct{}{}
	b.lock.Unlock()
	b.logger.Printf("[%s][telemetry] connected", conn.RemoteAddr())

	defer b.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.lock.Lock()
	_, ok := b.clients[conn]
	delete(b.clients, conn)
	b.lock.Unlock()

	if ok {
		conn.Close()
		b.logger.Printf("[%s][telemetry] disconnected", conn.RemoteAddr())
	}
}

func (b *Broadcaster) isClosed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.closed
}

func (b *Broadcaster) Clients() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) publish(now time.Time) {
	rec := b.capture()
	rec.Time = now
	payload := NewStatePayload(rec)

	b.lock.Lock()
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		conns = append(conns, conn)
	}
	b.lock.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(TELEMETRY_WRITE_TIMEOUT))
		if err := conn.WriteJSON(payload); err != nil {
			b.logger.Printf("[%s][telemetry][error] failed to send, because %v", conn.RemoteAddr(), err)
			b.drop(conn)
		}
	}
}

// SignalStop stops publishing and disconnects every client.
func (b *Broadcaster) SignalStop() {
	b.Worker.SignalStop()

	b.lock.Lock()
	b.closed = true
	conns := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		conns = append(conns, conn)
	}
	b.lock.Unlock()

	for _, conn := range conns {
		b.drop(conn)
	}
}
