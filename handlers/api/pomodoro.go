package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"preppilot/config"
	"preppilot/utils"
)

// PomodoroHandler streams focus-timer ticks over a websocket. The client
// starts a countdown; the server ticks once per second and signals
// completion. Disconnecting or sending "stop" cancels the ticker, matching
// the interval-clearing behavior the dashboard expects.
type PomodoroHandler struct {
	config *config.Config
}

// NewPomodoroHandler creates a new pomodoro handler
func NewPomodoroHandler(cfg *config.Config) *PomodoroHandler {
	return &PomodoroHandler{config: cfg}
}

type pomodoroCommand struct {
	Action  string `json:"action"` // "start" or "stop"
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"` // exact remainder, used when resuming mid-countdown
}

type pomodoroTick struct {
	Type             string `json:"type"` // "tick" or "done"
	RemainingSeconds int    `json:"remaining_seconds"`
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *PomodoroHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve is the websocket session loop.
func (h *PomodoroHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		commands := make(chan pomodoroCommand)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for {
				var cmd pomodoroCommand
				if err := conn.ReadJSON(&cmd); err != nil {
					return
				}
				select {
				case commands <- cmd:
				case <-done:
					return
				}
			}
		}()

		var ticker *time.Ticker
		var tickC <-chan time.Time
		remaining := 0

		stopTicker := func() {
			if ticker != nil {
				ticker.Stop()
				ticker = nil
				tickC = nil
			}
		}
		defer stopTicker()

		for {
			select {
			case <-done:
				return

			case cmd := <-commands:
				switch cmd.Action {
				case "start":
					stopTicker()
					remaining = cmd.Seconds
					if remaining <= 0 {
						minutes := cmd.Minutes
						if minutes <= 0 {
							minutes = h.config.Pomodoro.FocusMinutes
						}
						remaining = minutes * 60
					}
					ticker = time.NewTicker(time.Second)
					tickC = ticker.C
					if err := conn.WriteJSON(pomodoroTick{Type: "tick", RemainingSeconds: remaining}); err != nil {
						return
					}
				case "stop":
					stopTicker()
				default:
					utils.Log.Debug("unknown pomodoro action %q", cmd.Action)
				}

			case <-tickC:
				remaining--
				if remaining <= 0 {
					stopTicker()
					if err := conn.WriteJSON(pomodoroTick{Type: "done"}); err != nil {
						return
					}
					continue
				}
				if err := conn.WriteJSON(pomodoroTick{Type: "tick", RemainingSeconds: remaining}); err != nil {
					return
				}
			}
		}
	})
}
