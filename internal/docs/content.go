package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with augmentor",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "augmentor.yaml schema, environment variables, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "stages",
		Title:   "Pipeline Stages",
		Summary: "Planner, researcher, augmentor and generator, and how they loop",
		Content: topicStages,
	},
	{
		Name:    "api",
		Title:   "HTTP API",
		Summary: "Endpoints served by augmentor serve",
		Content: topicAPI,
	},
	{
		Name:    "mcp",
		Title:   "MCP Server",
		Summary: "Using augmentor as a tool from an MCP client",
		Content: topicMCP,
	},
	{
		Name:    "artifacts",
		Title:   "Run Artifacts",
		Summary: "Structure of the artifacts directory and run history",
		Content: topicArtifacts,
	},
}

const topicQuickstart = `Quick Start
===========

1. Create a starter config:

    augmentor init

   This writes augmentor.yaml, .env.example and a .gitignore.

2. Copy .env.example to .env and set GOOGLE_API_KEY and TAVILY_API_KEY
   (or the keys for the providers you picked).

3. Run a request:

    augmentor run "Write a migration guide from Python 3.8 to 3.12"

   Attach local documents as extra context:

    augmentor run "Summarize the risks in this contract" --file contract.pdf

4. Talk to it interactively. Clarifying questions are asked on the
   terminal and your answers are folded into the request:

    augmentor chat

CLI Commands
------------

  augmentor run <request>         Run the pipeline once
  augmentor run <request> --json  Print the final run state as JSON
  augmentor chat                  Interactive session with clarifications
  augmentor status [run-id]       Show a run's stages and timing
  augmentor doctor [run-id]       Ask the model to diagnose a failed run
  augmentor history               List recent runs
  augmentor show <run-id>         Show one run from history
  augmentor serve                 Start the HTTP API
  augmentor mcp                   Serve the MCP tool over stdio
  augmentor init                  Write a starter config
  augmentor docs [topic]          Show documentation

Per-stage models can be overridden on run and chat with
--planner-model, --augmentor-model and --generator-model.
`

const topicConfig = `Configuration Reference
=======================

augmentor reads augmentor.yaml from the working directory (override with
--config). The file is optional; every key has a default. A .env file in
the working directory is loaded first. Variables already set in the
environment win.

llm
---

  provider     gemini, openai or ollama                   (default: gemini)
  base-url     provider endpoint override
  temperature  sampling temperature, 0 to 2                (default: 0)
  timeout      seconds allowed per model call             (default: 120)

models
------

  planner      model for the planner stage     (default: gemini-2.5-flash)
  augmentor    model for the augmentor stage   (default: gemini-2.5-flash)
  generator    model for the generator stage   (default: gemini-2.5-flash)

search
------

  provider     tavily or brave                  (default: tavily)
  depth        basic or advanced                (default: basic)
  max-results  results per query, 1 to 5       (default: 5)
  cache-ttl    seconds to cache results, 0 off  (default: 0)

documents
---------

  chunk-size     characters per chunk            (default: 1000)
  chunk-overlap  characters shared by neighbours (default: 100)

pipeline
--------

  max-passes     planning passes before a run is halted (default: 25)
  artifacts-dir  where run directories are written      (default: debug_output)

log, history, server, telemetry
-------------------------------

  log.file            rotating JSON log           (default: logs/augmentor.log)
  log.production      production encoder config
  history.path        sqlite history database    (default: augmentor.db)
  history.disabled    turn history off
  server.addr         listen address              (default: :8080)
  server.session-ttl  minutes a paused run is kept (default: 60)
  server.allow-files  let API clients name local files
  telemetry.enabled   export traces over OTLP/HTTP
  telemetry.endpoint  collector address           (default: localhost:4318)

Environment Variables
---------------------

  GOOGLE_API_KEY, GEMINI_API_KEY   Gemini credentials
  OPENAI_API_KEY, OPENAI_BASE_URL  OpenAI or a compatible endpoint
  OLLAMA_BASE_URL                  local Ollama server
  TAVILY_API_KEY, BRAVE_API_KEY    search credentials
  AUGMENTOR_MAX_PASSES             overrides pipeline.max-passes
  AUGMENTOR_ADDR                   overrides server.addr
  OTEL_ENABLED                     overrides telemetry.enabled
  OTEL_EXPORTER_OTLP_ENDPOINT      overrides telemetry.endpoint

API keys are never read from augmentor.yaml. Missing keys for the
configured providers are reported before a run starts.
`

const topicStages = `Pipeline Stages
===============

Each pass runs the stages in order. Every stage reads the run state and
returns only the fields it owns.

  1. planner     Turns the request into a list of web search queries.
  2. researcher  Runs each query (at most 5 results each) and splits any
                 attached files into overlapping chunks. The gathered
                 context replaces the previous pass's context.
  3. augmentor   Rewrites the request into a detailed prompt, or returns
                 clarifying questions when the context is not enough.
  4. generator   Sends the refined prompt to the generator model.

Clarifications
--------------

When the augmentor asks questions the run pauses. Your answer is appended
to the original request after "User's clarification:" and the pass starts
again from the planner. Passes are capped by pipeline.max-passes.

Failures
--------

A stage error stops the run. The error reads "<stage> Agent failed: ..."
and no later stage runs. Attachments may be PDFs or plain text and source
files (.txt, .md, .py, .go, .json, .yaml, .csv and similar). Anything else
fails the researcher.

Snapshots
---------

Every stage result, success or failure, is written to the run directory
as <index>_<stage>_output.json. A later pass overwrites earlier
snapshots of the same stage.
`

const topicAPI = `HTTP API
========

Start the server with:

    augmentor serve [--addr :8080]

All responses share one envelope:

    {"success": true, "code": 200, "message": "...", "data": {...}}

Endpoints
---------

  GET  /healthz              Liveness check
  POST /runs                 Start a run
  GET  /runs/:id             Run state and status
  POST /runs/:id/clarify     Answer a paused run's questions
  GET  /runs                 Recent runs from history

POST /runs body:

    {"prompt": "...", "files": ["notes.md"],
     "models": {"planner": "...", "augmentor": "...", "generator": "..."}}

files is rejected with 403 unless server.allow-files is set. A run that
needs clarification responds with status needs-input and stays available
for server.session-ttl minutes.

POST /runs/:id/clarify body:

    {"answer": "..."}

Returns 404 when the run is unknown or expired and 409 when it is not
waiting for an answer.
`

const topicMCP = `MCP Server
==========

    augmentor mcp

serves the Model Context Protocol over stdio. Register the binary as a
stdio server in your MCP client.

Tools
-----

  augment_prompt  Run the pipeline on a prompt.
                  Arguments: prompt (required), files, planner_model,
                  augmentor_model, generator_model.
  clarify_run     Continue a run that asked questions.
                  Arguments: run_id, answer.

When the pipeline needs more detail the tool result lists the questions
and the run_id to pass to clarify_run. Logs go to the log file only,
since stdout carries the protocol.
`

const topicArtifacts = `Run Artifacts
=============

Every run gets its own directory under pipeline.artifacts-dir:

  debug_output/<run-id>/
  ├── state.json                 Run id, status, pass count, models
  ├── run.json                   Last run state
  ├── timing.json                Start and end of each stage per pass
  ├── 1_planner_output.json      Stage snapshots
  ├── 2_researcher_output.json
  ├── 3_augmentor_output.json
  └── 4_generator_output.json

Run ids look like 20260102-150405-1a2b3c4d. Files are written atomically.

state.json
----------

status is one of running, completed, needs-input, failed or interrupted.

History
-------

Finished passes are also recorded in the sqlite database at
history.path. List them with augmentor history and print one with
augmentor show <run-id>.
`
