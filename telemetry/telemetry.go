package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/goccy/go-json"
	analytics "github.com/segmentio/analytics-go/v3"
	"github.com/spf13/viper"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/utils"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
)

var (
	once     sync.Once
	instance *Telemetry
	idLock   sync.Mutex
)

const (
	anonymousIDFile       = "telemetry_id"
	version               = "0.1.0"
	serviceName           = "olake-ticketmatic"
	syncMetricsFilePrefix = "sync_metrics_"
)

// Telemetry sends anonymous usage events. It is a no-op unless enabled.
type Telemetry struct {
	client   analytics.Client
	enabled  bool
	platform platformInfo
}

type platformInfo struct {
	OS        string
	Arch      string
	Version   string
	DeviceCPU string
}

type SyncMetrics struct {
	Total   int            `json:"total"`
	Success int            `json:"success"`
	Failed  int            `json:"failed"`
	Weeks   map[string]int `json:"weeks"` // Key format: "YYYY-Www" (e.g., "2023-W43")
}

func newTelemetry() *Telemetry {
	t := &Telemetry{
		platform: platformInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			Version:   version,
			DeviceCPU: fmt.Sprintf("%d cores", runtime.NumCPU()),
		},
	}

	key := viper.GetString(constants.TelemetryKey)
	if !viper.GetBool(constants.TelemetryEnabled) || key == "" {
		logger.Debug("Telemetry is disabled")
		return t
	}

	client, err := analytics.NewWithConfig(key, analytics.Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	})
	if err != nil {
		logger.Warnf("failed to initialize telemetry client: %s", err)
		return t
	}

	t.client = client
	t.enabled = true
	return t
}

func GetInstance() *Telemetry {
	once.Do(func() {
		instance = newTelemetry()
	})
	return instance
}

func (t *Telemetry) Enabled() bool {
	return t.enabled
}

func (t *Telemetry) Flush() {
	if t.client == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		logger.Warnf("failed to flush telemetry: %s", err)
	}
}

func (t *Telemetry) SendEvent(eventName string, properties map[string]interface{}) error {
	if !t.enabled {
		return nil
	}

	anonymousID := GetAnonymousID()
	props := map[string]interface{}{
		"anonymous_id": anonymousID,
		"os":           t.platform.OS,
		"arch":         t.platform.Arch,
		"version":      t.platform.Version,
		"num_cpu":      t.platform.DeviceCPU,
		"service":      serviceName,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range properties {
		props[k] = v
	}

	err := t.client.Enqueue(analytics.Track{
		UserId:     anonymousID,
		Event:      eventName,
		Properties: props,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue telemetry event[%s]: %s", eventName, err)
	}

	logger.Debugf("Event %s queued", eventName)
	return nil
}

// GetAnonymousID returns a random id persisted in the telemetry directory
func GetAnonymousID() string {
	idLock.Lock()
	defer idLock.Unlock()

	idPath := filepath.Join(configDir(), anonymousIDFile)
	if idBytes, err := os.ReadFile(idPath); err == nil {
		return string(idBytes)
	}

	newID := utils.ULID()
	if err := os.MkdirAll(configDir(), 0755); err != nil {
		logger.Debugf("failed to create telemetry dir: %s", err)
	}
	if err := os.WriteFile(idPath, []byte(newID), 0600); err != nil {
		logger.Debugf("failed to write anonymous id: %s", err)
	}
	return newID
}

func configDir() string {
	return filepath.Join(os.TempDir(), serviceName)
}

// ComputeConfigHash identifies a source and destination pair without sending either
func ComputeConfigHash(srcPath, destPath string) string {
	if srcPath == "" || destPath == "" {
		return ""
	}
	a, err := os.ReadFile(srcPath)
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(destPath)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(append(a, b...))
	return hex.EncodeToString(sum[:])
}

// TrackSyncResult counts sync outcomes per config in a local file
func (t *Telemetry) TrackSyncResult(configHash string, success bool) *SyncMetrics {
	if configHash == "" {
		return nil
	}

	metricsPath := filepath.Join(configDir(), syncMetricsFilePrefix+GetAnonymousID())

	metrics := make(map[string]SyncMetrics)
	if data, err := os.ReadFile(metricsPath); err == nil {
		_ = json.Unmarshal(data, &metrics)
	}

	year, week := time.Now().ISOWeek()
	weekKey := fmt.Sprintf("%d-W%02d", year, week)

	configMetrics, exists := metrics[configHash]
	if !exists || configMetrics.Weeks == nil {
		configMetrics.Weeks = make(map[string]int)
	}
	configMetrics.Total++
	if success {
		configMetrics.Success++
	} else {
		configMetrics.Failed++
	}
	configMetrics.Weeks[weekKey]++
	metrics[configHash] = configMetrics

	if data, err := json.Marshal(metrics); err == nil {
		_ = os.WriteFile(metricsPath, data, 0600)
	} else {
		logger.Debugf("failed to save sync metrics: %s", err)
	}

	return &configMetrics
}
