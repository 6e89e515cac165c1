// Package notifier delivers reminder texts to the habitloop tray app.
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
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitloop/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess

	// ErrTrayNotRunning is returned when no live tray app owns the lockfile.
	ErrTrayNotRunning = errors.New(constants.TrayAppExecutable + " is not running")
)

const requestTimeout = 5 * time.Second

// Notifier posts notifications to the tray app's local webhook.
type Notifier struct {
	client     *http.Client
	durationMs uint32
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// lock is the content of the tray lockfile: "port|pid|secret".
type lock struct {
	port   int
	pid    int
	secret string
}

func New() *Notifier {
	return &Notifier{
		client:     &http.Client{Timeout: requestTimeout},
		durationMs: constants.NotificationDurationMs,
	}
}

func (n *Notifier) Notify(text string) error {
	l, err := findTray()
	if err != nil {
		return err
	}
	return n.send(l, WebhookPayload{Text: text, DurationMs: n.durationMs})
}

// Status returns nil when a live tray app owns the lockfile.
func Status() error {
	_, err := findTray()
	return err
}

func findTray() (lock, error) {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return lock{}, err
	}
	l, err := readLock(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return lock{}, err
	}
	if err := verifyProcess(l.pid); err != nil {
		return lock{}, err
	}
	return l, nil
}

// GetTrayAppConfigDir returns the directory holding the tray lockfile. The
// tray app may point it elsewhere with lockfile_dir in its settings.json.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err != nil {
		return trayConfigDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err != nil || store.Settings.LockfileDir == "" {
		return trayConfigDir, nil
	}
	return store.Settings.LockfileDir, nil
}

func readLock(path string) (lock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return lock{}, ErrTrayNotRunning
	}
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return lock{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return lock{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return lock{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return lock{}, errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return lock{}, errors.New("secret in lockfile is empty")
	}
	return lock{port: port, pid: pid, secret: secret}, nil
}

func verifyProcess(pid int) error {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayAppExecutable) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayAppExecutable, process.Executable())
	}
	return nil
}

func (n *Notifier) send(l lock, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", l.port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Habitloop-Secret", l.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach tray app: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
