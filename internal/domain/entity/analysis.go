package entity

const (
	CacheHit  = "HIT"
	CacheMiss = "MISS"

	PostmanLive = "live"
	PostmanStub = "stub"
)

type AnalysisRequest struct {
	Repo       string
	Team       string
	WindowDays int
}

type AnalysisResult struct {
	Score           int
	Bottlenecks     []string
	SOPPreview      string
	ReportURL       string
	ReportID        string
	CacheStatus     string
	Similarity      *float64
	PostmanMode     string
	SemanticEnabled bool
	Partial         bool
}

// CachedAnalysis is the payload resolved by a cache fingerprint.
type CachedAnalysis struct {
	Repo        string          `json:"repo"`
	Team        string          `json:"team"`
	WindowDays  int             `json:"window_days"`
	Score       int             `json:"score"`
	Bottlenecks []string        `json:"bottlenecks"`
	SOP         string          `json:"sop"`
	Metrics     WorkflowMetrics `json:"metrics"`
	ReportURL   string          `json:"report_url,omitempty"`
}

type CacheLookup struct {
	Found      bool
	Similarity float64
	Payload    *CachedAnalysis
}

type Reasoning struct {
	SOP         string
	Bottlenecks []string
	Summary     string
}
