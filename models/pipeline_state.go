package models

import "time"

// PipelineState 는 run 커맨드 한 번의 진행 상황이다.
// File: <run-dir>/pipeline_state.json
type PipelineState struct {
	RunID      string            `json:"run_id"`
	RunDir     string            `json:"run_dir"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Topic      *Topic            `json:"topic,omitempty"`
	Artifacts  map[string]string `json:"artifacts"`
	Errors     map[string]string `json:"errors,omitempty"`
	Success    bool              `json:"success"`
}

func NewPipelineState(runID, runDir string) *PipelineState {
	return &PipelineState{
		RunID:     runID,
		RunDir:    runDir,
		StartedAt: time.Now(),
		Artifacts: map[string]string{},
		Errors:    map[string]string{},
	}
}

// Fail 은 스테이지 오류를 기록한다.
func (s *PipelineState) Fail(stage string, err error) {
	if err == nil {
		return
	}
	s.Errors[stage] = err.Error()
}
