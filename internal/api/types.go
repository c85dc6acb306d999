package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Item describes a batch item in a transport-friendly format.
type Item struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	OriginalName  string   `json:"originalName,omitempty"`
	MediaType     string   `json:"mediaType"`
	Size          int64    `json:"size"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	State         string   `json:"state"`
	StateLabel    string   `json:"stateLabel"`
	Selected      bool     `json:"selected"`
	Progress      float64  `json:"progress"`
	Settings      Settings `json:"settings"`
	Output        *Output  `json:"output,omitempty"`
	SuggestedName string   `json:"suggestedName"`
	ErrorMessage  string   `json:"errorMessage,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	AddedAt       string   `json:"addedAt,omitempty"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`
}

// Settings mirrors convert.Settings.
type Settings struct {
	Format              string `json:"format"`
	Quality             int    `json:"quality"`
	Width               int    `json:"width,omitempty"`
	Height              int    `json:"height,omitempty"`
	MaintainAspectRatio bool   `json:"maintainAspectRatio"`
}

// Output summarises a converted result without its bytes.
type Output struct {
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
	Released bool   `json:"released,omitempty"`
}

// BatchSummary provides per-state counts for a batch.
type BatchSummary struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// ItemListResponse wraps a collection of items.
type ItemListResponse struct {
	Items   []Item       `json:"items"`
	Summary BatchSummary `json:"summary"`
}

// ExportReport describes a completed export.
type ExportReport struct {
	Strategy    string          `json:"strategy"`
	ArchiveName string          `json:"archiveName,omitempty"`
	Files       []string        `json:"files"`
	Entries     []string        `json:"entries,omitempty"`
	Delivered   []string        `json:"delivered"`
	Failures    []ExportFailure `json:"failures,omitempty"`
	Bytes       int64           `json:"bytes"`
	OutputDir   string          `json:"outputDir,omitempty"`
}

// ExportFailure names an entry that was not delivered.
type ExportFailure struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Error  string `json:"error"`
}

// Event is a notification rendered for transport.
type Event struct {
	Kind       string         `json:"kind"`
	MessageKey string         `json:"messageKey"`
	Message    string         `json:"message"`
	Params     map[string]any `json:"params,omitempty"`
	Time       string         `json:"time,omitempty"`
}

// RunResponse aggregates the result of a convert or manifest run.
type RunResponse struct {
	RunID     string        `json:"runId"`
	Items     []Item        `json:"items"`
	Summary   BatchSummary  `json:"summary"`
	Export    *ExportReport `json:"export,omitempty"`
	Events    []Event       `json:"events,omitempty"`
	ElapsedMS int64         `json:"elapsedMs"`
}

// Inspection reports how the validator sees one input without converting it.
type Inspection struct {
	Name       string `json:"name"`
	MediaType  string `json:"mediaType"`
	Size       int64  `json:"size"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Status     string `json:"status"`
	MessageKey string `json:"messageKey,omitempty"`
	Message    string `json:"message,omitempty"`
}
