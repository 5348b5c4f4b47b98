package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shida18719/trading-algo-assessment/internal/domain"
	"github.com/Shida18719/trading-algo-assessment/internal/event"
	"github.com/Shida18719/trading-algo-assessment/internal/infra"
)

const (
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
	maxRetries       = 10
)

// depthFrame is the wire format of one book update:
// levels are [price, quantity] pairs, best level first.
type depthFrame struct {
	Bids [][2]int64 `json:"bids"`
	Asks [][2]int64 `json:"asks"`
	Ts   int64      `json:"ts"` // unix millis
}

// Worker maintains the market-data WebSocket connection and turns depth
// frames into BookUpdateEvents on the sequencer inbox. Decoding lives
// here, outside the decision core. Events are published unstamped; the
// sequencer assigns sequence numbers on receipt.
type Worker struct {
	url   string
	inbox chan<- event.Event

	conn      *websocket.Conn
	mu        sync.RWMutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWorker creates a new feed worker.
func NewWorker(url string, inbox chan<- event.Event) *Worker {
	return &Worker{
		url:   url,
		inbox: inbox,
	}
}

// Connect starts the WebSocket connection with automatic reconnection
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.connectionLoop(ctx)

	return nil
}

// connectionLoop handles connection and reconnection with exponential backoff
func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Feed panic recovered", slog.Any("panic", r))
		}
	}()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Feed connection loop stopped")
			return
		default:
		}

		err := w.connect(ctx)
		if err != nil {
			if !domain.IsRetriable(err) {
				slog.Error("Feed error is not retriable, stopping", slog.Any("error", err))
				return
			}
			slog.Warn("Feed connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
			)

			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				slog.Error("Feed max retries exceeded, resetting counter")
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		// Connection successful, reset retry counter
		retryCount = 0

		// Read messages until error
		w.readLoop(ctx)
	}
}

// connect establishes the WebSocket connection. A malformed URL is a
// fatal error; dial failures are retriable.
func (w *Worker) connect(ctx context.Context) error {
	u, err := url.Parse(w.url)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return domain.NewFatalNetworkError("dial", fmt.Errorf("invalid feed url %q", w.url))
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return domain.NewNetworkError("dial", fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err))
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()
	infra.GlobalMetrics.IncrementConnections()

	slog.Info("Feed WebSocket connected", slog.String("url", w.url))
	return nil
}

// readLoop reads depth frames until the connection drops.
func (w *Worker) readLoop(ctx context.Context) {
	defer w.closeConnection()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Warn("Feed read failed",
				slog.Any("error", domain.NewNetworkError("read", err)))
			return
		}

		var frame depthFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			slog.Warn("Feed frame decode failed", slog.Any("error", err))
			continue
		}

		w.publish(&frame)
	}
}

// publish converts a decoded frame into a pooled BookUpdateEvent and
// hands it to the sequencer, which stamps and later releases it.
func (w *Worker) publish(frame *depthFrame) {
	ev := event.AcquireBookUpdateEvent()
	ev.Ts = frame.Ts * 1000 // millis to micros
	for _, lv := range frame.Bids {
		ev.Bids = append(ev.Bids, domain.PriceLevel{Price: lv[0], Quantity: lv[1]})
	}
	for _, lv := range frame.Asks {
		ev.Asks = append(ev.Asks, domain.PriceLevel{Price: lv[0], Quantity: lv[1]})
	}

	w.inbox <- ev
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	if w.connected {
		w.connected = false
		infra.GlobalMetrics.DecrementConnections()
	}
}

// IsConnected reports whether the feed link is up.
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Disconnect stops the worker and waits for the loop to exit.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
