// Package agentloop implements an interactive coding agent loop.
//
// It pairs a chat completion endpoint with a small set of workspace tools
// (read_file, list_files, edit_file) and orchestrates the turn cycle: a user
// input is appended to the history, the model is called with the full
// conversation and tool definitions, any tool calls it returns are executed
// against the workspace, and the results are fed back until the model
// answers in plain text or the tool round cap is hit.
//
// # Architecture
//
// The package is organized around these core concepts:
//
//   - Session: The central orchestrator holding conversation state,
//     dispatching tool calls, managing events, and enforcing limits.
//   - Workspace: The containment boundary for every filesystem path a
//     tool touches.
//   - ToolRegistry: Registration and dispatch of tool definitions.
//   - EventEmitter: Typed event stream for host application integration.
//
// # Quick Start
//
//	client, _ := llm.NewClientFromEnv()
//	ws, _ := agentloop.NewWorkspace(".")
//	registry := agentloop.NewToolRegistry()
//	agentloop.RegisterCoreTools(registry)
//
//	session := agentloop.NewSession(client, registry, ws, nil)
//	defer session.Close()
//
//	if err := session.Submit(ctx, "Create a hello.py file"); err != nil {
//	    log.Fatal(err)
//	}
package agentloop
