package domain

// Chunk is a bounded span of document text considered as one inference unit.
// Page numbers are 1-based.
type Chunk struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Batch groups chunks sent together in one inference request.
type Batch struct {
	Index  int
	Chunks []Chunk
}

type ModelRole string

const (
	RolePrimary    ModelRole = "primary"
	RoleValidation ModelRole = "validation"
	RoleCrossCheck ModelRole = "cross-check"
)

// ModelConfig describes one inference backend. Read-only during a run.
type ModelConfig struct {
	Name        string    `yaml:"name"`
	Endpoint    string    `yaml:"endpoint"`
	Model       string    `yaml:"model"`
	Weight      float64   `yaml:"weight"`
	Role        ModelRole `yaml:"role"`
	Temperature float64   `yaml:"temperature"`
	TopP        float64   `yaml:"top_p"`
	MaxTokens   int       `yaml:"max_tokens"`
	RatePerSec  float64   `yaml:"rate_per_sec"`
}

// Source cites the passage a recommendation was extracted from.
type Source struct {
	ReferenceNumber int    `json:"reference_number"`
	SourceText      string `json:"source_text"`
}

// OptionCandidate is one option for consideration attached to a vulnerability.
// LinkedVulnerability is empty until the option is tied to a consolidated
// vulnerability id, either by the backend or by similarity linking.
type OptionCandidate struct {
	OptionText          string   `json:"option_text"`
	Sources             []Source `json:"sources"`
	LinkedVulnerability string   `json:"linked_vulnerability,omitempty"`
}

// Finding is a raw backend claim: one vulnerability with its options.
// It carries no guarantees until it passes validation.
type Finding struct {
	Category      string            `json:"category"`
	Vulnerability string            `json:"vulnerability"`
	Options       []OptionCandidate `json:"options"`
}

// ConsolidatedVulnerability is the terminal unit of work: one normalized
// vulnerability with its deduplicated, capped option list.
type ConsolidatedVulnerability struct {
	ID            string            `json:"id"`
	Category      string            `json:"category"`
	Vulnerability string            `json:"vulnerability"`
	Options       []OptionCandidate `json:"options"`
	Linked        bool              `json:"linked"`
}

// Categories is the fixed vocabulary backends must label findings with.
var Categories = []string{
	"access control",
	"video surveillance",
	"communications",
	"emergency planning",
	"physical security",
	"cybersecurity",
	"personnel and training",
	"policies and procedures",
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

func KnownCategory(category string) bool {
	_, ok := categorySet[category]
	return ok
}
