package advisor

import (
	"github.com/ollama/ollama/api"

	"github.com/forgelabs/forge-tui/internal/logging"
)

// ToolCallRecord is the persisted trace of one executed tool call, stored
// alongside the message that carried it. Replaying the records of a
// conversation reconstructs the advisor's side effects (the documents it
// created and edited) without re-running the model.
type ToolCallRecord struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// RecordToolCall converts an Ollama tool call into its persisted form.
func RecordToolCall(call api.ToolCall) ToolCallRecord {
	args := make(map[string]any, len(call.Function.Arguments))
	for k, v := range call.Function.Arguments {
		args[k] = v
	}
	return ToolCallRecord{Name: call.Function.Name, Args: args}
}

// Replay executes recorded tool calls against the registry in order.
// Individual failures are logged and skipped: a record can legitimately
// fail on replay (a create after a create of the same name from a retried
// turn) and one bad record must not discard the rest of the history's
// effects. Returns the number of records applied.
func Replay(registry *Registry, records []ToolCallRecord) int {
	logger := logging.WithComponent("advisor-replay")

	applied := 0
	for _, record := range records {
		tool, exists := registry.Get(record.Name)
		if !exists {
			logger.Warn("Skipping replay of unknown tool", "tool", record.Name)
			continue
		}
		if _, err := tool.Execute(record.Args); err != nil {
			logger.Warn("Tool replay failed",
				"tool", record.Name,
				"error", err.Error(),
			)
			continue
		}
		applied++
	}

	logger.Debug("Tool call replay completed", "records", len(records), "applied", applied)
	return applied
}
