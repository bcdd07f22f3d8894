package pipeline

// StageState tracks where a stage is in its lifecycle.
type StageState string

const (
	StageIdle      StageState = "idle"
	StageRunning   StageState = "running"
	StageSucceeded StageState = "succeeded"
	StageFailed    StageState = "failed"
)

// Stage keys. Translate and export are parameterised, so their keys carry
// the language or format suffix.
const (
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
	StageItems      = "items"
)

// TranslateStage returns the stage key for a target language.
func TranslateStage(lang string) string { return "translate:" + lang }

// ExportStage returns the stage key for an export format.
func ExportStage(format string) string { return "export:" + format }

// StageStatus is the externally visible status of one stage. ErrorMessage is
// set only while State is failed.
type StageStatus struct {
	State        StageState `json:"state"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

type stageSet map[string]StageStatus

func newStageSet() stageSet {
	return stageSet{
		StageTranscribe: {State: StageIdle},
		StageSummarize:  {State: StageIdle},
		StageItems:      {State: StageIdle},
	}
}

func (s stageSet) get(key string) StageStatus {
	if status, ok := s[key]; ok {
		return status
	}
	return StageStatus{State: StageIdle}
}

// set records a new state, clearing any failure message from an earlier run.
func (s stageSet) set(key string, state StageState) {
	s[key] = StageStatus{State: state}
}

func (s stageSet) fail(key, message string) {
	s[key] = StageStatus{State: StageFailed, ErrorMessage: message}
}

// resetDownstream returns every stage except transcribe to idle. Invoked when
// a new transcript invalidates all derived outputs.
func (s stageSet) resetDownstream() {
	for key := range s {
		if key != StageTranscribe {
			s[key] = StageStatus{State: StageIdle}
		}
	}
}

func (s stageSet) clone() stageSet {
	copied := make(stageSet, len(s))
	for key, status := range s {
		copied[key] = status
	}
	return copied
}
