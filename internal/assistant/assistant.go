// Package assistant turns free-text input into a draft expense by asking
// a language model to fill a function-call schema.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/billfold-io/billfold/internal/models"
)

// ErrNoExpense means the model produced nothing usable as an expense.
var ErrNoExpense = errors.New("input did not describe an expense")

// Drafter is the capability the handler needs; satisfied by Client and
// by the handler-test stub.
type Drafter interface {
	DraftExpense(ctx context.Context, input string, categories []*models.Category) (*Draft, error)
}

// Draft is the model's proposed expense, returned to the client for
// confirmation; nothing is persisted here.
type Draft struct {
	CategoryID int64   `json:"category_id"`
	Label      string  `json:"label"`
	Amount     string  `json:"amount"`
	DueDate    string  `json:"due_date"`
	PaidAt     *string `json:"paid_at"`
}

// Client calls the OpenAI chat-completions API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// New creates a Client. baseURL overrides the endpoint for tests; empty
// means the production API.
func New(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatRequest struct {
	Model        string         `json:"model"`
	Messages     []chatMessage  `json:"messages"`
	Functions    []chatFunction `json:"functions"`
	FunctionCall map[string]any `json:"function_call"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			FunctionCall struct {
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"message"`
	} `json:"choices"`
}

// DraftExpense sends the user's categories and free text to the model and
// decodes the function-call arguments into a Draft. A draft without a
// label, amount or category is rejected with ErrNoExpense.
func (c *Client) DraftExpense(ctx context.Context, input string, categories []*models.Category) (*Draft, error) {
	var categoryList bytes.Buffer
	for _, cat := range categories {
		fmt.Fprintf(&categoryList, "ID: %d, Category: %s\n", cat.ID, cat.Name)
	}
	today := time.Now().Format("2006-01-02")

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a useful assistant."},
			{Role: "user", Content: fmt.Sprintf("Here is the input: %s. Return the expense as json.", input)},
		},
		Functions: []chatFunction{{
			Name:        "create_expense",
			Description: "Create an expense from free-text input; if the input is not an expense, return an empty json object",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"category_id": map[string]any{
						"type":        "integer",
						"description": "Available categories: " + categoryList.String(),
					},
					"label": map[string]any{
						"type":        "string",
						"description": "Name of the expense.",
					},
					"amount": map[string]any{
						"type":        "string",
						"description": "Expense amount as a decimal string",
					},
					"due_date": map[string]any{
						"type":        "string",
						"description": "Due date of the expense in YYYY-MM-DD format; today is " + today,
					},
					"paid_at": map[string]any{
						"type":        "string",
						"description": "Payment date in YYYY-MM-DD format, or null if unpaid; today is " + today,
					},
				},
			},
		}},
		FunctionCall: map[string]any{"name": "create_expense"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assistant API returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode assistant response: %v", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, ErrNoExpense
	}

	var draft Draft
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.FunctionCall.Arguments), &draft); err != nil {
		return nil, ErrNoExpense
	}
	if draft.Label == "" || draft.Amount == "" || draft.CategoryID == 0 {
		return nil, ErrNoExpense
	}
	return &draft, nil
}
