package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrNoSymptoms = errors.New("at least one symptom is required")
	ErrPredict    = errors.New("prediction failed")
)

// Predictor classifies a symptom list into a disease name.
type Predictor interface {
	Predict(ctx context.Context, symptoms []string) (string, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, symptoms []string) (string, error)

func (f PredictorFunc) Predict(ctx context.Context, symptoms []string) (string, error) {
	return f(ctx, symptoms)
}

// Result is a virtual prescription.
type Result struct {
	Symptoms []string `json:"symptoms"`
	Disease  string   `json:"disease"`
	Drug     string   `json:"drug"`
}

type Service struct {
	predictor Predictor
	log       *slog.Logger
}

func NewService(p Predictor, log *slog.Logger) *Service {
	return &Service{predictor: p, log: log}
}

// Diagnose normalizes symptoms (trimmed, blanks and repeats dropped),
// asks the predictor for a disease and looks the drug up in the catalog.
func (s *Service) Diagnose(ctx context.Context, symptoms []string) (Result, error) {
	clean := normalize(symptoms)
	if len(clean) == 0 {
		return Result{}, ErrNoSymptoms
	}
	disease, err := s.predictor.Predict(ctx, clean)
	if err != nil {
		s.log.Warn("diagnosis: predictor failed", slog.Int("symptoms", len(clean)), slog.Any("err", err))
		return Result{}, fmt.Errorf("%w: %w", ErrPredict, err)
	}
	disease = strings.TrimSpace(disease)
	return Result{Symptoms: clean, Disease: disease, Drug: DrugFor(disease)}, nil
}

func normalize(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
