package domain

import "time"

type Format string

const (
	FormatMP3 Format = "mp3"
	FormatMP4 Format = "mp4"
)

// Ext returns the final container extension produced for this format.
func (f Format) Ext() string {
	return string(f)
}

func (f Format) Valid() bool {
	return f == FormatMP3 || f == FormatMP4
}

type JobStatus string

const (
	JobStatusResolving   JobStatus = "resolving"
	JobStatusPlanning    JobStatus = "planning"
	JobStatusFetching    JobStatus = "fetching"
	JobStatusFinalizing  JobStatus = "finalizing"
	JobStatusComplete    JobStatus = "complete"
	JobStatusUnavailable JobStatus = "unavailable"
	JobStatusFailed      JobStatus = "failed"
)

// Job is one line of a submitted batch. Immutable after creation, consumed
// exactly once by the fetcher.
type Job struct {
	SourceURL      string
	FolderKey      string
	Subfolder      string
	CustomFilename string
	Format         Format
	User           string
	UseCache       bool
}

// Batch is an ordered list of jobs submitted together.
type Batch struct {
	ID   string
	Jobs []Job
}

// PlanItem is a single locator the provider still has to fetch, paired with
// the file the fetch is expected to produce in the staging area.
type PlanItem struct {
	Locator      string
	Title        string
	ExpectedPath string
}

// Plan is the per-job skip-vs-fetch decision, derived once from the
// retrieved info and the target folder's current listing.
type Plan struct {
	ToFetch     []PlanItem
	Existing    []string
	Unavailable []string
}

// Outcome summarises one finished job for the batch summary and history.
type Outcome struct {
	Status      JobStatus
	Moved       []string
	Missing     []string
	Unavailable []string
	Err         error
}

// BatchRecord and JobRecord are the persisted history rows.
type BatchRecord struct {
	ID        string
	User      string
	FolderKey string
	URLCount  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type JobRecord struct {
	ID          int64
	BatchID     string
	SourceURL   string
	Format      Format
	Status      JobStatus
	Moved       int
	Missing     int
	Unavailable int
	ErrorText   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
