// Package intent labels user utterances so the orchestrator can route them:
// greetings and technical questions go to generation, out-of-domain input is
// rejected with a canned response. Classification is backed by the generation
// service with constrained output and fails closed to IntentTechnical so a
// classifier outage never drops a turn.
package intent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/askdocs/logging"
	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/model"
)

// Intent is the routing label for one utterance.
type Intent string

const (
	// IntentGreeting marks courtesy and small talk.
	IntentGreeting Intent = "GREETING"
	// IntentTechnical marks in-domain technical questions.
	IntentTechnical Intent = "TECHNICAL"
	// IntentOutOfDomain marks input unrelated to the assistant's domain.
	IntentOutOfDomain Intent = "OUT_OF_DOMAIN"
)

// Valid reports whether i is one of the defined labels.
func (i Intent) Valid() bool {
	switch i {
	case IntentGreeting, IntentTechnical, IntentOutOfDomain:
		return true
	}
	return false
}

// Classification is the structured classifier output.
type Classification struct {
	Intent    Intent `json:"intent"`
	Reasoning string `json:"reasoning"`
}

// Classifier labels a user utterance. Implementations must never fail open:
// when in doubt, return IntentTechnical so the question reaches retrieval.
type Classifier interface {
	Classify(ctx context.Context, text string) Classification
}

const classifierInstructions = "You are an expert classifier for a Microsoft Azure assistant.\n" +
	"Categorize the input according to these rules:\n" +
	"1. GREETING: courtesies and brief small talk.\n" +
	"2. TECHNICAL: questions about Azure services (VNet, SQL, App Service, etc).\n" +
	"3. OUT_OF_DOMAIN: topics unrelated to Azure or technology.\n" +
	"\n" +
	"IMPORTANT: if the input mentions AWS, Amazon Web Services, Google Cloud or GCP, " +
	"or any technology that is not Microsoft Azure, you MUST classify it as OUT_OF_DOMAIN."

// classificationSchema constrains the model to the Classification shape.
var classificationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"intent": map[string]any{
			"type": "string",
			"enum": []string{string(IntentGreeting), string(IntentTechnical), string(IntentOutOfDomain)},
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": "Brief explanation of why this category was chosen.",
		},
	},
	"required":             []string{"intent", "reasoning"},
	"additionalProperties": false,
}

// ModelClassifier classifies with the generation service using constrained
// JSON output.
type ModelClassifier struct {
	llm    model.Model
	logger logging.Logger
}

// NewModelClassifier creates a classifier backed by the given model.
func NewModelClassifier(llm model.Model, logger logging.Logger) *ModelClassifier {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ModelClassifier{llm: llm, logger: logger}
}

// Classify implements Classifier. Any failure — transport, malformed JSON, an
// unknown label — falls back to IntentTechnical.
func (c *ModelClassifier) Classify(ctx context.Context, text string) Classification {
	req := model.Request{
		Instructions: classifierInstructions,
		History: []message.Message{
			message.Human{Text: fmt.Sprintf("User input: %q", text)},
		},
		ResponseSchema: &model.ResponseSchema{
			Name:   "utterance_classification",
			Schema: classificationSchema,
		},
	}

	reply, err := c.llm.Invoke(ctx, req)
	if err != nil {
		c.logger.Error("intent.classify.failed", "error", err.Error())
		return fallbackClassification()
	}

	var result Classification
	if err := json.Unmarshal([]byte(reply.Text), &result); err != nil {
		c.logger.Error("intent.classify.decode_failed", "error", err.Error())
		return fallbackClassification()
	}
	if !result.Intent.Valid() {
		c.logger.Error("intent.classify.invalid_label", "label", string(result.Intent))
		return fallbackClassification()
	}

	c.logger.Info("intent.classified", "intent", string(result.Intent), "reasoning", result.Reasoning)
	return result
}

func fallbackClassification() Classification {
	return Classification{
		Intent:    IntentTechnical,
		Reasoning: "Fallback due to a classification service error.",
	}
}
