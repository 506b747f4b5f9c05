package status

import (
	"encoding/json"
	"net/http"
	"slices"

	"aws-client-factory/pkg/clock"
	"aws-client-factory/pkg/factory"
)

// Source exposes the instantiated clients rendered by the handler.
type Source interface {
	Instantiated() map[string]factory.Instance
}

// Client describes a single instantiated client.
type Client struct {
	Service     string `json:"service"`
	Region      string `json:"region,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
	ClockOffset string `json:"clockOffset,omitempty"`
	ClockSynced bool   `json:"clockSynced"`
}

// Snapshot captures the cache status returned by the handler.
type Snapshot struct {
	Clients     []Client `json:"clients"`
	ClockOffset string   `json:"clockOffset,omitempty"`
}

// Handler renders the instantiated clients of a cache as JSON.
type Handler struct {
	source Source
	shared *clock.Offset
}

// NewHandler constructs a Handler over source. shared is the offset synced clients are
// expected to be bound to; nil reports every client as unsynced.
func NewHandler(source Source, shared *clock.Offset) *Handler {
	return &Handler{source: source, shared: shared}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	if h == nil || h.source == nil {
		http.Error(writer, "client cache unavailable", http.StatusServiceUnavailable)

		return
	}

	payload, err := json.Marshal(h.snapshot())
	if err != nil {
		http.Error(writer, "marshal status", http.StatusInternalServerError)

		return
	}

	writer.Header().Set("Content-Type", "application/json")
	_, _ = writer.Write(payload)
}

func (h *Handler) snapshot() Snapshot {
	instances := h.source.Instantiated()

	names := make([]string, 0, len(instances))
	for name := range instances {
		names = append(names, name)
	}

	slices.Sort(names)

	snapshot := Snapshot{Clients: make([]Client, 0, len(names))}
	if h.shared != nil {
		snapshot.ClockOffset = h.shared.Load().String()
	}

	for _, name := range names {
		snapshot.Clients = append(snapshot.Clients, h.describe(name, instances[name]))
	}

	return snapshot
}

func (h *Handler) describe(name string, instance factory.Instance) Client {
	entry := Client{Service: name}

	cfg := factory.ConfigOf(instance)
	if cfg == nil {
		return entry
	}

	entry.Region = cfg.Options.Region
	entry.Endpoint = cfg.Options.Endpoint

	if setting := cfg.ClockSetting(); setting != nil {
		entry.ClockOffset = setting.Offset().String()
		entry.ClockSynced = h.shared != nil && setting.BoundTo(h.shared)
	}

	return entry
}
