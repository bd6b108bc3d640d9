package live

import (
	"context"
	"net/http"
	"sync"
	"time"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

// Feed pushes a MonitorReport to every connected WebSocket client: the
// current one on connect, then one per monitor state change.
type Feed struct {
	monitor  ports.StatsMonitor
	cfg      Config
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	id   string
	mu   sync.Mutex
	send chan []byte
}

func NewFeed(monitor ports.StatsMonitor, cfg Config, logger *zap.SugaredLogger) *Feed {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 1
	}
	return &Feed{
		monitor: monitor,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	cl := &client{
		id:   uuid.NewString(),
		send: make(chan []byte, f.cfg.SendBuffer),
	}

	// Holding cl.mu across Subscribe and the first Report keeps a concurrent
	// state change from being queued ahead of the initial report.
	cl.mu.Lock()
	unsubscribe := f.monitor.Subscribe(func(_ context.Context, s domain.MonitorState) error {
		cl.mu.Lock()
		defer cl.mu.Unlock()
		f.enqueue(cl, domain.NewMonitorReport(s))
		return nil
	})
	f.enqueue(cl, f.monitor.Report())
	cl.mu.Unlock()
	defer unsubscribe()

	f.mu.Lock()
	f.clients[cl.id] = cl
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.clients, cl.id)
		f.mu.Unlock()
	}()

	f.logger.Infow("live client connected", "client_id", cl.id, "remote_addr", r.RemoteAddr)

	conn.SetReadDeadline(time.Now().Add(f.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(f.cfg.PongTimeout))
	})

	// Clients only send control frames; reading is what processes pongs and
	// notices a closed connection.
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	pingTicker := time.NewTicker(f.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case msg := <-cl.send:
			conn.SetWriteDeadline(time.Now().Add(f.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				f.logger.Infow("error writing report", "client_id", cl.id, "error", err)
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(f.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				f.logger.Infow("error sending ping", "client_id", cl.id, "error", err)
				return
			}

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Infow("live client read error", "client_id", cl.id, "error", err)
			}
			f.logger.Infow("live client disconnected", "client_id", cl.id)
			return
		}
	}
}

// enqueue never blocks the monitor: a client whose buffer is full misses
// the report.
func (f *Feed) enqueue(cl *client, report domain.MonitorReport) {
	msg, err := json.Marshal(report)
	if err != nil {
		f.logger.Errorw("failed to encode report", "error", err)
		return
	}

	select {
	case cl.send <- msg:
	default:
		f.logger.Debugw("dropping report for slow client", "client_id", cl.id)
	}
}
