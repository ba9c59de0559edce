package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/ip-inspection/internal/domain/ai"
)

// GetSystemPrompt frames the assistant as a server health analyst.
func GetSystemPrompt() string {
	return `You are an expert in server health monitoring. Analyze the Nagios monitoring data carefully and give an accurate score and actionable suggestions.`
}

// GetUserPrompt embeds the snapshot into the fixed scoring instruction.
func GetUserPrompt(snapshot json.RawMessage) string {
	return fmt.Sprintf(`The following is Nagios monitoring information for one server. Based on the current information, rate the server status on a scale from 1 to 10.

Monitoring data:
%s

Analyze the following aspects and give a score:
1. Service status (are any services in warning or critical state)
2. Performance metrics (CPU, memory, disk, etc.)
3. Overall health

Reply in JSON format: {"score": <score>, "analysis": "<detailed analysis>", "suggestions": "<improvement suggestions>"}`, indent(snapshot))
}

// InspectionMessages builds the full conversation for one snapshot.
func InspectionMessages(snapshot json.RawMessage) []ai.Message {
	return []ai.Message{
		{Role: ai.RoleSystem, Content: GetSystemPrompt()},
		{Role: ai.RoleUser, Content: GetUserPrompt(snapshot)},
	}
}

func indent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
