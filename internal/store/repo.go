package store

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when a record with the same natural key exists.
var ErrDuplicate = errors.New("record already exists")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// XPEventData describes a single XP award to append.
type XPEventData struct {
	User     string
	Activity string
	// Ref identifies the completed item (puzzle ID, tutorial ID). An empty
	// ref is never deduplicated.
	Ref       string
	Points    int
	Timestamp time.Time // zero means now
}

// XPEventRecord is a stored XP event.
type XPEventRecord struct {
	ID        int64
	Sequence  int64
	User      string
	Activity  string
	Ref       string
	Points    int
	Timestamp time.Time
}

// UserTotal is a user's summed XP.
type UserTotal struct {
	User   string
	Points int
}

// XPRepo is the append-only XP ledger.
type XPRepo interface {
	// AppendXPEvent records an award. It returns ErrDuplicate when the user
	// already holds an event for the same activity and non-empty ref.
	AppendXPEvent(ctx context.Context, data XPEventData) (*XPEventRecord, error)

	// TotalXP returns the user's summed XP, 0 for unknown users.
	TotalXP(ctx context.Context, user string) (int, error)

	// TotalXPThrough returns the user's summed XP over events with sequence
	// <= seq.
	TotalXPThrough(ctx context.Context, user string, seq int64) (int, error)

	// Totals returns every user's summed XP.
	Totals(ctx context.Context) ([]UserTotal, error)

	// QueryXPEvents returns a user's events, newest first.
	QueryXPEvents(ctx context.Context, user string, opts QueryOpts) ([]XPEventRecord, error)
}

// CertificateRecord is an issued tier certificate.
type CertificateRecord struct {
	ID        string
	Sequence  int64
	User      string
	Tier      string
	Icon      string
	XP        int
	AwardedAt time.Time
}

// CertificateRepo stores tier certificates, at most one per user and tier.
type CertificateRepo interface {
	// SaveCertificate stores cert and fills in its sequence. It returns
	// ErrDuplicate when the user already holds a certificate for the tier.
	SaveCertificate(ctx context.Context, cert *CertificateRecord) error

	// Certificates returns a user's certificates in award order.
	Certificates(ctx context.Context, user string) ([]CertificateRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
