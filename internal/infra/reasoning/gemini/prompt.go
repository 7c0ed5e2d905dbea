package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

const maxContextDocs = 5

const systemPrompt = `You are OpsPilot's reasoning engine. Output valid JSON only.

Required JSON schema:
{
  "bottlenecks": ["string", "string", "string"],
  "sop": "single markdown-formatted string",
  "summary": "single string"
}

Rules:
- "sop" must be ONE string with markdown formatting (use \n for newlines)
- Include sections: Goals, SLAs, Auto-triage rules, Assignment policy, PR review policy, QA gates, Weekly cadence, RACI
- bottlenecks: array of 3-5 measurable items from METRICS
- summary: 1-2 sentences
- Output ONLY valid JSON, no extra text`

func buildUserPrompt(m entity.WorkflowMetrics, docs []string) (string, error) {
	metrics, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}

	if len(docs) > maxContextDocs {
		docs = docs[:maxContextDocs]
	}
	rag := "No RAG context available."
	if len(docs) > 0 {
		rag = strings.Join(docs, "\n---\n")
	}

	return fmt.Sprintf(`METRICS:
%s

RAG CONTEXT (top-k snippets):
%s

Tasks:
1) Produce 3-5 bottlenecks (measurable, use METRICS).
2) Produce SOP (<700 words) with required sections and explicit SLAs in hours.
3) Produce a 1-2 sentence summary.

Return JSON ONLY.`, metrics, rag), nil
}
