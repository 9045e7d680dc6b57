// Package notifier forwards engine events to the desktop tray companion, which
// shows them as toasts. The tray announces itself with a lockfile holding
// "port|pid|secret".
package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/tendwell/internal/constants"
	"github.com/julianstephens/tendwell/internal/events"
	"github.com/julianstephens/tendwell/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning means there is nobody to deliver notifications to.
var ErrTrayNotRunning = errors.New(constants.TrayAppIdentifier + " is not running")

type WebhookPayload struct {
	Kind       events.Type `json:"kind"`
	Text       string      `json:"text"`
	DurationMs uint32      `json:"duration_ms"`
}

type Notifier struct {
	client *http.Client
	log    *log.Logger
	// absent is set once the tray was found missing; later events are dropped.
	absent atomic.Bool
}

func New() *Notifier {
	return &Notifier{
		client: &http.Client{Timeout: 2 * time.Second},
		log:    logger.Component("notifier"),
	}
}

// Notify delivers text to the tray.
func (n *Notifier) Notify(kind events.Type, text string) error {
	configDir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	t, err := locateTray(filepath.Join(configDir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	return n.send(t, WebhookPayload{
		Kind:       kind,
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	})
}

// Handler returns a bus handler that forwards every event rendered by format.
// Delivery is best effort: failures are logged and never reach the caller.
func (n *Notifier) Handler(format func(events.Event) string) events.Handler {
	return func(e events.Event) {
		if n.absent.Load() {
			return
		}
		err := n.Notify(e.Type(), format(e))
		switch {
		case errors.Is(err, ErrTrayNotRunning):
			n.absent.Store(true)
			n.log.Debug("Tray not running, notifications disabled", "error", err)
		case err != nil:
			n.log.Warn("Failed to deliver notification", "type", e.Type(), "error", err)
		}
	}
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// The tray may move its lockfile via settings.json
	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err != nil {
		return trayConfigDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir *string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil && store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
		return *store.Settings.LockfileDir, nil
	}
	return trayConfigDir, nil
}

type tray struct {
	port   int
	secret string
}

func locateTray(lockfilePath string) (tray, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return tray{}, ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return tray{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return tray{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return tray{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return tray{}, errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return tray{}, errors.New("secret in lockfile is empty")
	}

	// A stale lockfile outlives the tray; make sure the pid is really ours.
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return tray{}, ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayAppIdentifier) {
		return tray{}, fmt.Errorf("%w: pid %d is %s", ErrTrayNotRunning, pid, process.Executable())
	}

	return tray{port: port, secret: secret}, nil
}

func (n *Notifier) send(t tray, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", t.port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tendwell-Secret", t.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(msg))
}
