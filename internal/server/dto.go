package server

import (
	"github.com/jorge-barreto/augmentor/internal/history"
	"github.com/jorge-barreto/augmentor/internal/state"
)

type ModelsRequest struct {
	Planner   string `json:"planner"`
	Augmentor string `json:"augmentor"`
	Generator string `json:"generator"`
}

type CreateRunRequest struct {
	Prompt string         `json:"prompt" validate:"required"`
	Files  []string       `json:"files" validate:"omitempty,dive,required"`
	Models *ModelsRequest `json:"models"`
}

type ClarifyRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type RunResponse struct {
	RunID  string         `json:"run_id"`
	Status string         `json:"status"`
	Passes int            `json:"passes"`
	State  state.RunState `json:"state"`
}

type HistoryResponse struct {
	Runs []history.Entry `json:"runs"`
}
