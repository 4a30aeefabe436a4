package simulate

import "time"

// Transports a simulated child can use to deliver pointer events.
const (
	TransportHTTP   = "http"
	TransportStream = "ws"
	TransportMixed  = "mixed"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	ActivityID string        // Tracing page to draw on
	Sessions   int           // Number of tracing sessions to simulate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request and stream read timeout
	Transport  string        // http, ws or mixed
	BatchSize  int           // Events per POST /sessions/{id}/events
	Modes      []Mode        // Drawing modes to cycle through; empty means all
	OutputFile string        // Optional JSON report of every session
	Verbose    bool          // Log every session
}

// Result is the outcome of one simulated session.
type Result struct {
	SessionID string `json:"session_id"`
	Mode      Mode   `json:"mode"`
	Transport string `json:"transport"`
	Events    int    `json:"events"`
	Percent   int    `json:"percent"`
	Stars     int    `json:"stars"`
	Duplicate bool   `json:"duplicate_detected"`
	Passed    bool   `json:"passed"`
	Error     string `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Sessions   int
	Checked    int
	Passed     int
	Mismatched int
	Failed     int
	Duplicates int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Event is a pointer event as the API accepts it.
type Event struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type surfaceJSON struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

type activityJSON struct {
	ID      string `json:"id"`
	Tracing *struct {
		Path    string `json:"path"`
		ViewBox struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		} `json:"view_box"`
	} `json:"tracing"`
}

type sessionJSON struct {
	ID string `json:"id"`
}

type applyJSON struct {
	Applied   int  `json:"applied"`
	Duplicate bool `json:"duplicate"`
	Points    int  `json:"points"`
}

type resultJSON struct {
	Type    string `json:"type,omitempty"`
	Percent int    `json:"percent"`
	Stars   int    `json:"stars"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
