// internal/report/generator/generator.go

// Package generator turns an assembled context into report text by driving
// the model endpoint through a bounded retry loop. The caller always gets a
// presentable string back: generated text on success, a marked sentinel
// message otherwise.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dyemind/internal/common/metrics"
	"dyemind/internal/inference"
	"dyemind/internal/models"
)

const (
	errorPrefix = "⚠️ AI Error: "
	busyMessage = "⚠️ AI Service Busy or unexpected response format. Please try again in 30 seconds."
)

const promptTemplate = `[INST] You are an expert chemical biologist. Write a short, professional scientific summary for the fluorescent probe: "%s".

Use these data sources:
CHEMISTRY: %s
LITERATURE:
%s
ENCYCLOPEDIA: %s

Format the response strictly as follows:
**1. Overview:** What is it and what is it used for?
**2. Chemical Properties:** Mention structure and excitation/emission if known.
**3. Performance:** Extract any Limit of Detection (LOD) or sensitivity mentions.
**4. Applications:** Key use cases (e.g. mitochondria, ROS, ions).
**5. Limitations:** Known drawbacks such as photobleaching, toxicity, or poor solubility.

Keep it concise, scientific, and factual. Do not invent numeric values such as excitation/emission wavelengths or LOD figures. [/INST]`

// Generation runs move through these states; every transition is logged so a
// stuck or flapping endpoint is visible in one place.
type state string

const (
	stateBuilding   state = "building"
	stateRequesting state = "requesting"
	stateRetrying   state = "retrying"
	stateSucceeded  state = "succeeded"
	stateFailed     state = "failed"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// InferenceClient posts a prompt to the model endpoint and returns the raw
// reply.
type InferenceClient interface {
	Generate(ctx context.Context, prompt string, params inference.Parameters) (*inference.Response, error)
}

// Result is the outcome of one generation run. Text always carries something
// presentable: model output when FromInference is true, otherwise a marked
// sentinel message.
type Result struct {
	Text          string
	FromInference bool
	Attempts      int
}

type Generator struct {
	config *Config
	client InferenceClient
	logger Logger
}

func NewGenerator(config *Config, client InferenceClient, log Logger) *Generator {
	return &Generator{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{
			"component": "report-generator",
		}),
	}
}

// Generate renders the prompt and calls the endpoint up to MaxAttempts
// times. It retries on non-success status, a model-loading error body, or an
// unrecognized body, with a fixed delay between attempts. Any other reported
// error terminates immediately and is surfaced, prefixed, as the result text.
func (g *Generator) Generate(ctx context.Context, assembled models.AssembledContext) *Result {
	g.transition(stateBuilding, map[string]interface{}{
		"query": assembled.Query,
	})
	prompt := buildPrompt(assembled)

	params := inference.Parameters{
		MaxNewTokens:   g.config.MaxNewTokens,
		Temperature:    g.config.Temperature,
		ReturnFullText: false,
	}

	for attempt := 1; ; attempt++ {
		g.transition(stateRequesting, map[string]interface{}{
			"attempt": attempt,
		})

		resp, err := g.client.Generate(ctx, prompt, params)
		if err != nil {
			// Transport failures surface like any other terminal endpoint
			// error: marked, human readable, never thrown.
			metrics.InferenceAttempts.WithLabelValues("transport_error").Inc()
			g.transition(stateFailed, map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			return &Result{Text: errorPrefix + err.Error(), Attempts: attempt}
		}

		outcome := interpretResponse(resp)
		metrics.InferenceAttempts.WithLabelValues(outcome.reason).Inc()

		switch outcome.kind {
		case outcomeText:
			g.transition(stateSucceeded, map[string]interface{}{
				"attempt": attempt,
			})
			return &Result{Text: outcome.text, FromInference: true, Attempts: attempt}

		case outcomeTerminal:
			g.transition(stateFailed, map[string]interface{}{
				"attempt": attempt,
				"error":   outcome.text,
			})
			return &Result{Text: errorPrefix + outcome.text, Attempts: attempt}
		}

		if attempt >= g.config.MaxAttempts {
			break
		}

		g.transition(stateRetrying, map[string]interface{}{
			"attempt": attempt,
			"reason":  outcome.reason,
			"delay":   g.config.RetryDelay.String(),
		})
		if !g.wait(ctx) {
			g.transition(stateFailed, map[string]interface{}{
				"attempt": attempt,
				"error":   ctx.Err().Error(),
			})
			return &Result{Text: busyMessage, Attempts: attempt}
		}
	}

	g.transition(stateFailed, map[string]interface{}{
		"attempts": g.config.MaxAttempts,
	})
	return &Result{Text: busyMessage, Attempts: g.config.MaxAttempts}
}

func buildPrompt(assembled models.AssembledContext) string {
	return fmt.Sprintf(promptTemplate,
		assembled.Query,
		assembled.Chemistry,
		assembled.Literature,
		assembled.Encyclopedia,
	)
}

type outcomeKind int

const (
	outcomeText outcomeKind = iota
	outcomeTransient
	outcomeTerminal
)

type responseOutcome struct {
	kind   outcomeKind
	text   string
	reason string
}

// interpretResponse classifies the raw endpoint reply. Recognized shapes are
// tried in a fixed order: a list of generated-text objects, a single
// generated-text object, then an error object. A non-success status or an
// unrecognized body counts as transient; an error body is transient only
// while the model reports it is loading.
func interpretResponse(resp *inference.Response) responseOutcome {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseOutcome{kind: outcomeTransient, reason: "http_error"}
	}

	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(resp.Body, &list); err == nil && len(list) > 0 && list[0].GeneratedText != "" {
		return responseOutcome{kind: outcomeText, text: list[0].GeneratedText, reason: "ok"}
	}

	var single struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(resp.Body, &single); err == nil && single.GeneratedText != "" {
		return responseOutcome{kind: outcomeText, text: single.GeneratedText, reason: "ok"}
	}

	var apiError struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &apiError); err == nil && apiError.Error != "" {
		if strings.Contains(strings.ToLower(apiError.Error), "loading") {
			return responseOutcome{kind: outcomeTransient, reason: "model_loading"}
		}
		return responseOutcome{kind: outcomeTerminal, text: apiError.Error, reason: "terminal_error"}
	}

	return responseOutcome{kind: outcomeTransient, reason: "unrecognized"}
}

// wait sleeps the fixed retry delay, honoring cancellation.
func (g *Generator) wait(ctx context.Context) bool {
	select {
	case <-time.After(g.config.RetryDelay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (g *Generator) transition(s state, fields map[string]interface{}) {
	fields["state"] = string(s)
	g.logger.Info("generation state changed", fields)
}
