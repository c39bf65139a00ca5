package monitoring

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"plantcare-be/internal/services"
	ws "plantcare-be/internal/websocket"
)

const (
	sampleInterval = 15 * time.Second
	highCPUPercent = 90.0
	alertCooldown  = 10 * time.Minute
)

// SystemSnapshot is one sample of host resource usage.
type SystemSnapshot struct {
	CPUPercent      float64   `json:"cpuPercent"`
	MemUsedPercent  float64   `json:"memUsedPercent"`
	DiskUsedPercent float64   `json:"diskUsedPercent"`
	SampledAt       time.Time `json:"sampledAt"`
}

// SystemMonitor periodically samples host stats, keeps the latest snapshot
// for the /api/system endpoint, and raises a warning event on high CPU.
type SystemMonitor struct {
	eventSvc services.EventServiceProvider
	hub      *ws.Hub
	done     chan bool

	mu        sync.Mutex
	latest    SystemSnapshot
	lastAlert time.Time
}

// NewSystemMonitor creates a new SystemMonitor.
func NewSystemMonitor(eventSvc services.EventServiceProvider, hub *ws.Hub) *SystemMonitor {
	return &SystemMonitor{
		eventSvc: eventSvc,
		hub:      hub,
		done:     make(chan bool),
	}
}

// Run starts the periodic sampling.
func (m *SystemMonitor) Run() {
	log.Info().Msg("Starting system monitor...")
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	// Sample once immediately on start
	m.sample()

	for {
		select {
		case <-m.done:
			log.Info().Msg("Stopping system monitor.")
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// Stop halts the sampling.
func (m *SystemMonitor) Stop() {
	m.done <- true
}

// Latest returns the most recent snapshot.
func (m *SystemMonitor) Latest() SystemSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

func (m *SystemMonitor) sample() {
	snapshot := SystemSnapshot{SampledAt: time.Now()}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snapshot.CPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("SystemMonitor: failed to sample CPU")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snapshot.MemUsedPercent = vm.UsedPercent
	}

	if du, err := disk.Usage("/"); err == nil {
		snapshot.DiskUsedPercent = du.UsedPercent
	}

	m.mu.Lock()
	m.latest = snapshot
	shouldAlert := snapshot.CPUPercent >= highCPUPercent && time.Since(m.lastAlert) >= alertCooldown
	if shouldAlert {
		m.lastAlert = snapshot.SampledAt
	}
	m.mu.Unlock()

	if shouldAlert {
		m.raiseCPUAlert(snapshot)
	}
}

func (m *SystemMonitor) raiseCPUAlert(snapshot SystemSnapshot) {
	event, err := m.eventSvc.CreateEvent("system.alert.cpu", "warn",
		"Host CPU usage is high; analyses may slow down", nil)
	if err != nil {
		log.Error().Err(err).Msg("SystemMonitor: failed to record CPU alert")
		return
	}
	m.hub.Broadcast <- ws.NewEventMessage(event)
	log.Warn().Float64("cpu_percent", snapshot.CPUPercent).Msg("High CPU usage alert")
}
