package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OddsEngine/internal/domain/models"
	drepo "OddsEngine/internal/domain/repository"
	"OddsEngine/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a LiveStream over the provider's statistics WebSocket.
type Client struct {
	apiKey         string
	websocketURL   string
	fixtures       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a LiveStream for the given fixtures.
func New(apiKey, websocketURL string, fixtures []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.LiveStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		fixtures:       fixtures,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("livefeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("livefeed connected", logger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to the configured fixtures.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("livefeed not connected")
	}
	for _, f := range c.fixtures {
		msg := map[string]string{"type": "subscribe", "fixture": f}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", f, err)
		}
		c.log.Info("livefeed subscribed", logger.String("fixture", f))
	}
	return nil
}

// feedTeam mirrors the provider's per-side statistics frame.
type feedTeam struct {
	Goals         int     `json:"goals"`
	ShotsOnTarget int     `json:"sot"`
	ShotsTotal    int     `json:"shots"`
	Possession    float64 `json:"poss"` // percent
	Corners       int     `json:"corners"`
	Fouls         int     `json:"fouls"`
	Yellow        int     `json:"yellow"`
	Red           int     `json:"red"`
}

type feedMessage struct {
	Type    string   `json:"type"`
	Fixture string   `json:"fixture"`
	Minute  int      `json:"minute"`
	Home    feedTeam `json:"home"`
	Away    feedTeam `json:"away"`
	Ts      int64    `json:"ts"` // ms
}

// Read streams tick events and errors until the context ends or the
// connection drops.
func (c *Client) Read(ctx context.Context) (<-chan *models.LiveStats, <-chan error) {
	ticks := make(chan *models.LiveStats, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("livefeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("livefeed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-stats frames
					continue
				}
				if m.Type != "stats" {
					continue
				}
				tick := convertFrame(&m)
				select {
				case ticks <- tick:
				default:
					// drop on backpressure; the next snapshot supersedes
				}
			}
		}
	}()

	return ticks, errs
}

func convertFrame(m *feedMessage) *models.LiveStats {
	return &models.LiveStats{
		FixtureID: m.Fixture,
		Minute:    m.Minute,
		Home:      convertTeam(m.Home),
		Away:      convertTeam(m.Away),
		Timestamp: time.Unix(m.Ts/1000, m.Ts%1000*int64(time.Millisecond)),
	}
}

func convertTeam(t feedTeam) models.TeamLiveStats {
	return models.TeamLiveStats{
		Goals:         t.Goals,
		ShotsOnTarget: t.ShotsOnTarget,
		ShotsTotal:    t.ShotsTotal,
		Possession:    t.Possession / 100,
		Corners:       t.Corners,
		Fouls:         t.Fouls,
		YellowCards:   t.Yellow,
		RedCards:      t.Red,
	}
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
