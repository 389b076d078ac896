package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/pkg/config"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

const (
	suggestionMaxHistory = 400
	suggestionMaxBody    = 4 << 20
)

// SuggestionService asks a remote chat-completions endpoint for a draft
// schedule. Every error path returns an error to the caller, which is
// expected to fall back to the local constructor; nothing here retries.
type SuggestionService struct {
	cfg    config.SuggestionConfig
	client *http.Client
	logger *zap.Logger
}

func NewSuggestionService(cfg config.SuggestionConfig, logger *zap.Logger) *SuggestionService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Configured reports whether a remote endpoint has been set up at all.
func (s *SuggestionService) Configured() bool {
	return s.cfg.Endpoint != "" && s.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type suggestionPayload struct {
	OptimizedSchedule []models.ScheduledClass `json:"optimizedSchedule"`
}

// Suggest sends a condensed history sample to the remote model and
// parses the returned draft. IDs are reissued locally so remote output
// can never collide with locally built classes.
func (s *SuggestionService) Suggest(ctx context.Context, history []models.ClassRecord, opts dto.OptimizeOptions) ([]models.ScheduledClass, error) {
	if !s.Configured() {
		return nil, appErrors.New("SUGGESTION_DISABLED", http.StatusServiceUnavailable, "remote suggestion endpoint not configured")
	}

	sample := history
	if len(sample) > suggestionMaxHistory {
		sample = sample[:suggestionMaxHistory]
	}
	prompt, err := buildSuggestionPrompt(sample, opts)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build suggestion prompt")
	}

	body, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a fitness studio scheduling assistant. Respond with JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode suggestion request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build suggestion request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, "SUGGESTION_UNAVAILABLE", http.StatusBadGateway, "suggestion endpoint unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, suggestionMaxBody))
	if err != nil {
		return nil, appErrors.Wrap(err, "SUGGESTION_UNAVAILABLE", http.StatusBadGateway, "failed to read suggestion response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.New("SUGGESTION_UNAVAILABLE", http.StatusBadGateway,
			fmt.Sprintf("suggestion endpoint returned status %d", resp.StatusCode))
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, appErrors.Wrap(err, "SUGGESTION_MALFORMED", http.StatusBadGateway, "suggestion response is not valid JSON")
	}
	if len(chat.Choices) == 0 {
		return nil, appErrors.New("SUGGESTION_MALFORMED", http.StatusBadGateway, "suggestion response has no choices")
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(extractJSONObject(chat.Choices[0].Message.Content)), &payload); err != nil {
		return nil, appErrors.Wrap(err, "SUGGESTION_MALFORMED", http.StatusBadGateway, "suggestion draft is not valid JSON")
	}
	if len(payload.OptimizedSchedule) == 0 {
		return nil, appErrors.New("SUGGESTION_MALFORMED", http.StatusBadGateway, "suggestion draft is empty")
	}

	draft := make([]models.ScheduledClass, 0, len(payload.OptimizedSchedule))
	for _, cls := range payload.OptimizedSchedule {
		if cls.Day == "" || cls.Time == "" || cls.Location == "" || cls.ClassFormat == "" {
			continue
		}
		cls.ID = uuid.NewString()
		if cls.Duration == "" {
			cls.Duration = "1"
		}
		draft = append(draft, cls)
	}
	if len(draft) == 0 {
		return nil, appErrors.New("SUGGESTION_MALFORMED", http.StatusBadGateway, "suggestion draft has no usable classes")
	}

	s.logger.Info("remote suggestion accepted",
		zap.Int("classes", len(draft)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return draft, nil
}

func buildSuggestionPrompt(history []models.ClassRecord, opts dto.OptimizeOptions) (string, error) {
	sample, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	b.WriteString("Build a weekly class schedule from this attendance history. ")
	if opts.LocationFilter != "" {
		fmt.Fprintf(&b, "Only schedule classes at %s. ", opts.LocationFilter)
	}
	if opts.Iteration > 0 {
		fmt.Fprintf(&b, "This is refinement iteration %d; vary the draft from earlier attempts. ", opts.Iteration)
	}
	b.WriteString(`Reply with a JSON object of the form {"optimizedSchedule": [...]} where each entry has day, time, location, classFormat, teacherFirstName, teacherLastName and duration fields. History: `)
	b.Write(sample)
	return b.String(), nil
}

// extractJSONObject trims chat wrapper text (markdown fences, prose)
// around the first top-level JSON object in the content.
func extractJSONObject(content string) string {
	start := -1
	depth := 0
	for i, r := range content {
		switch r {
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}
	return content
}
