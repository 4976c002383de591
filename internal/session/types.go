package session

import (
	"net/http"
	"slices"
	"time"

	"flint/internal/launch"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Record is the persisted outcome of one launch request.
type Record struct {
	ID         string     `json:"id"`
	SourceURI  string     `json:"source_uri"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Title      string     `json:"title,omitempty"`
	EntryPoint string     `json:"entrypoint,omitempty"`
	BaseDir    string     `json:"base_dir,omitempty"`
	Files      []string   `json:"files,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func (r *Record) snapshot() Record {
	c := *r
	c.Files = slices.Clone(r.Files)
	if r.FinishedAt != nil {
		finished := *r.FinishedAt
		c.FinishedAt = &finished
	}
	return c
}

type Options struct {
	DataDir               string
	CacheDir              string
	MaxConcurrentSessions int
	HTTPClient            *http.Client
	Launcher              launch.Launcher
}

const defaultMaxConcurrent = 2
