package server

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/jorge-barreto/augmentor/internal/bootstrap"
	"github.com/jorge-barreto/augmentor/internal/history"
	"github.com/jorge-barreto/augmentor/internal/state"
)

func (s *Server) health(ctx *fiber.Ctx) error {
	return ctx.JSON(SuccessResponse("ok", fiber.Map{"status": "ok"}))
}

func (s *Server) createRun(ctx *fiber.Ctx) error {
	var req CreateRunRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := ValidateRequest(req); err != nil {
		return err
	}
	if len(req.Files) > 0 && !s.container.Config.Server.AllowFiles {
		return fiber.NewError(fiber.StatusForbidden, "file inputs are disabled on this server (server.allow-files)")
	}

	models := s.container.Models()
	if req.Models != nil {
		models = overrideModels(models, *req.Models)
	}

	runID := bootstrap.NewRunID()
	r := s.container.NewRunner(runID, models)
	st := r.Run(ctx.UserContext(), state.New(req.Prompt, req.Files))

	if st.NeedsInput() {
		s.sessions.SetDefault(runID, &session{runner: r, state: st})
	}
	return ctx.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Code:    fiber.StatusCreated,
		Message: "Run " + r.Record.Status,
		Data:    RunResponse{RunID: runID, Status: r.Record.Status, Passes: r.Record.Passes, State: st},
	})
}

func (s *Server) clarifyRun(ctx *fiber.Ctx) error {
	runID := ctx.Params("id")
	var req ClarifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := ValidateRequest(req); err != nil {
		return err
	}

	v, ok := s.sessions.Get(runID)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no run awaiting clarification with id "+runID)
	}
	sess := v.(*session)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.state.NeedsInput() {
		return fiber.NewError(fiber.StatusConflict, "run "+runID+" is not awaiting clarification")
	}
	sess.state = sess.runner.Resume(ctx.UserContext(), sess.state, req.Answer)
	if sess.state.NeedsInput() {
		s.sessions.SetDefault(runID, sess)
	} else {
		s.sessions.Delete(runID)
	}

	rec := sess.runner.Record
	return ctx.JSON(SuccessResponse("Run "+rec.Status, RunResponse{
		RunID:  runID,
		Status: rec.Status,
		Passes: rec.Passes,
		State:  sess.state,
	}))
}

func (s *Server) showRun(ctx *fiber.Ctx) error {
	runID := ctx.Params("id")
	if v, ok := s.sessions.Get(runID); ok {
		sess := v.(*session)
		sess.mu.Lock()
		defer sess.mu.Unlock()
		rec := sess.runner.Record
		return ctx.JSON(SuccessResponse("Run "+rec.Status, RunResponse{
			RunID: runID, Status: rec.Status, Passes: rec.Passes, State: sess.state,
		}))
	}

	runDir := s.container.RunDir(runID)
	st, err := state.LoadRun(runDir)
	if errors.Is(err, os.ErrNotExist) {
		return fiber.NewError(fiber.StatusNotFound, "run "+runID+" not found")
	}
	if err != nil {
		return err
	}
	rec, err := state.Load(runDir)
	if err != nil {
		return err
	}
	return ctx.JSON(SuccessResponse("Run "+rec.Status, RunResponse{
		RunID: runID, Status: rec.Status, Passes: rec.Passes, State: st,
	}))
}

func (s *Server) listRuns(ctx *fiber.Ctx) error {
	if s.container.History == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "run history is disabled")
	}
	entries, err := s.container.History.List(ctx.UserContext(), ctx.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return ctx.JSON(SuccessResponse("Success list runs", HistoryResponse{Runs: entries}))
}

func overrideModels(base state.Models, req ModelsRequest) state.Models {
	if req.Planner != "" {
		base.Planner = req.Planner
	}
	if req.Augmentor != "" {
		base.Augmentor = req.Augmentor
	}
	if req.Generator != "" {
		base.Generator = req.Generator
	}
	return base
}
