package venture

type Stage string

const (
	StageIdle              Stage = "idle"
	StageValidating        Stage = "validating"
	StageRejected          Stage = "rejected"
	StagePrimaryGeneration Stage = "primary_generation"
	StageEnriching         Stage = "enriching"
	StageJoining           Stage = "joining"
	StageRendering         Stage = "rendering"
	StageDone              Stage = "done"
)

// Enrichment task tags, also used as log tags.
const (
	TaskLogo        = "logo"
	TaskScenario    = "scenario"
	TaskCompetitors = "competitors"
)

type EventKind string

const (
	EventStage EventKind = "stage"
	EventTask  EventKind = "task"
)

// Event is emitted on every state transition and when each enrichment task
// finishes. Task events arrive in completion order, which is unspecified.
type Event struct {
	Kind  EventKind
	Stage Stage
	Task  string
	OK    bool
}

// Observer receives events. It may be called from several goroutines at
// once during enrichment and must not block for long.
type Observer func(Event)
