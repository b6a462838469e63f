package core

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WorkerLabel identifies which domain worker produced (or should produce) an answer.
type WorkerLabel string

const (
	WorkerIngredient WorkerLabel = "ingredient"
	WorkerFormula    WorkerLabel = "formula"
	WorkerRegulation WorkerLabel = "regulation"
	WorkerGeneral    WorkerLabel = "general"
	WorkerError      WorkerLabel = "error"
)

// DefaultWorker is the label routing falls back to when a decision cannot be made.
const DefaultWorker = WorkerIngredient

// ValidWorkers is the closed set of labels a routing decision may carry.
var ValidWorkers = map[WorkerLabel]bool{
	WorkerIngredient: true,
	WorkerFormula:    true,
	WorkerRegulation: true,
}

// Message is one entry in a session's append-only conversation log.
// Messages are never mutated or reordered after insertion.
type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	AuthorName string         `json:"author_name,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ChatEntry is the role/content projection handed to a language model call.
type ChatEntry struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	AuthorName string `json:"author_name,omitempty"`
}

// RoutingResult is the validated outcome of a routing decision.
// Worker is always a member of ValidWorkers after validation and
// Confidence always lies in [0, 1].
type RoutingResult struct {
	Worker     WorkerLabel `json:"worker"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}

// Source points at a document a worker consulted while answering.
type Source struct {
	Title string  `json:"title"`
	ID    string  `json:"id,omitempty"`
	Score float64 `json:"score,omitempty"`
	URL   string  `json:"url,omitempty"`
}

// WorkerResponse is the raw answer a worker produces for one query.
type WorkerResponse struct {
	Content   string         `json:"content"`
	Sources   []Source       `json:"sources,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SupervisorResponse is the aggregated, user-facing result for one turn.
type SupervisorResponse struct {
	Content   string         `json:"content"`
	Worker    WorkerLabel    `json:"worker"`
	Timestamp *time.Time     `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
