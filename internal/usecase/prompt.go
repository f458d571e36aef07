package usecase

import (
	"strings"

	"training-planner/internal/domain"
)

const defaultPlanRequest = "Please create a balanced general-purpose weekly training plan."

func buildChatMessages(message string, history []domain.ChatMessage) []domain.ChatMessage {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildSystemPrompt()},
	}
	for _, m := range history {
		if hm, ok := historyToPromptMessage(m); ok {
			messages = append(messages, hm)
		}
	}
	return append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: message})
}

func buildPlanMessages(prompt string) []domain.ChatMessage {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = defaultPlanRequest
	}
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildSystemPrompt()},
		{Role: domain.RoleUser, Content: prompt},
	}
}

// historyToPromptMessage keeps prior user and assistant turns only. System
// messages from callers are dropped so they cannot replace the contract below.
func historyToPromptMessage(m domain.ChatMessage) (domain.ChatMessage, bool) {
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return domain.ChatMessage{}, false
	}
	switch m.Role {
	case domain.RoleUser, domain.RoleAssistant:
		return domain.ChatMessage{Role: m.Role, Content: content}, true
	default:
		return domain.ChatMessage{}, false
	}
}

func buildSystemPrompt() string {
	return strings.Join([]string{
		"Role:",
		"You are a professional fitness coach who designs weekly training plans.",
		"",
		"Requirements:",
		planRules(),
		"",
		"Output Contract:",
		outputContract(),
	}, "\n")
}

func planRules() string {
	return strings.Join([]string{
		"1) Produce a 7-day plan with concrete training content for every day.",
		"2) For each day give the training content, the duration and the focus or notes.",
		"3) Balance strength training, cardio and recovery.",
		"4) Take the user's fitness level and available time into account.",
		"5) Add practical training tips and strategy advice.",
		"6) Reply in the user's language; be professional but easy to follow.",
	}, "\n")
}

func outputContract() string {
	return `Return JSON only, in this shape:
{
  "response": "your reply to the user",
  "trainingPlan": {
    "title": "plan title",
    "subtitle": "subtitle",
    "schedule": [
      {"day": "Monday", "content": "training content", "duration": "duration", "notes": "focus / notes"}
    ],
    "tips": ["tip 1", "tip 2"],
    "strategies": [
      {"title": "strategy title", "description": "strategy description"}
    ]
  }
}`
}
