package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

// SubtaskSuggester turns a chat prompt into a completion
type SubtaskSuggester interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client SubtaskSuggester
}

// SuggestedSubtask is a checklist entry proposed for a task
type SuggestedSubtask struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// NewAIServiceWithClient is used by tests to stub the completion API.
func NewAIServiceWithClient(client SubtaskSuggester) *AIService {
	return &AIService{client: client}
}

// SuggestSubtasks asks the model to break a task into checklist items due
// no later than the task itself
func (s *AIService) SuggestSubtasks(ctx context.Context, task models.Task) ([]SuggestedSubtask, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	prompt := fmt.Sprintf(`You break operator tasks into short checklist items.

Current time: %s
Task title: %s
Task description:
%s
Task due: %s

Return only a JSON array, at most %d items:
[
  {"title": "short imperative title", "due_date": "ISO8601 timestamp no later than the task due date, or null"}
]`,
		time.Now().Format(time.RFC3339),
		task.Title,
		task.Description,
		task.DueDate.Format(time.RFC3339),
		constants.MaxAIGeneratedSubtasks,
	)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var suggestions []SuggestedSubtask
	if err := json.Unmarshal([]byte(content), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	valid := make([]SuggestedSubtask, 0, len(suggestions))
	for _, sg := range suggestions {
		sg.Title = strings.TrimSpace(sg.Title)
		if sg.Title == "" {
			continue
		}
		if sg.DueDate != nil && sg.DueDate.After(task.DueDate) {
			due := task.DueDate
			sg.DueDate = &due
		}
		valid = append(valid, sg)
		if len(valid) == constants.MaxAIGeneratedSubtasks {
			break
		}
	}

	if len(valid) == 0 {
		return nil, ErrAINoSubtasksGenerated
	}
	return valid, nil
}
