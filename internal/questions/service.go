package questions

import (
	"context"
	"fmt"
	"strings"

	"github.com/quanty/quanty-backend/internal/catalog"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

// QuestionDTO is one practice question from the bank.
type QuestionDTO struct {
	ID               int                `json:"id"`
	Category         string             `json:"category"`
	Difficulty       catalog.Difficulty `json:"difficulty"`
	Question         string             `json:"question"`
	Topics           []string           `json:"topics"`
	EstimatedMinutes int                `json:"estimated_minutes"`
}

var bank = []QuestionDTO{
	{
		ID:               1,
		Category:         "Paper Implementation",
		Difficulty:       catalog.DifficultyAdvanced,
		Question:         `Implement the Transformer architecture from "Attention Is All You Need". Include multi-head attention, positional encoding and the complete encoder-decoder structure.`,
		Topics:           []string{"Attention Mechanisms", "PyTorch", "Neural Networks"},
		EstimatedMinutes: 90,
	},
	{
		ID:               2,
		Category:         "Algorithm Implementation",
		Difficulty:       catalog.DifficultyIntermediate,
		Question:         "Code the ResNet architecture from the original paper. Explain skip connections and implement the residual blocks with proper initialization.",
		Topics:           []string{"Deep Learning", "Computer Vision", "Skip Connections"},
		EstimatedMinutes: 60,
	},
	{
		ID:               3,
		Category:         "Research to Code",
		Difficulty:       catalog.DifficultyAdvanced,
		Question:         "Implement BERT from scratch following the original paper. Include WordPiece tokenization, masked language modeling and next sentence prediction.",
		Topics:           []string{"NLP", "Transformers", "Self-Supervised Learning"},
		EstimatedMinutes: 120,
	},
	{
		ID:               4,
		Category:         "ML Algorithms",
		Difficulty:       catalog.DifficultyIntermediate,
		Question:         "Implement the Variational Autoencoder from Kingma and Welling. Include the reparameterization trick and the ELBO loss.",
		Topics:           []string{"Generative Models", "Variational Inference", "PyTorch"},
		EstimatedMinutes: 75,
	},
	{
		ID:               5,
		Category:         "Deep Learning",
		Difficulty:       catalog.DifficultyAdvanced,
		Question:         "Code the GAN architecture from the original Goodfellow paper. Implement both generator and discriminator with stable training dynamics.",
		Topics:           []string{"Generative Models", "Adversarial Training", "Neural Networks"},
		EstimatedMinutes: 90,
	},
	{
		ID:               6,
		Category:         "Reinforcement Learning",
		Difficulty:       catalog.DifficultyAdvanced,
		Question:         "Implement Deep Q-Network from the DeepMind paper. Include experience replay, target networks and epsilon-greedy exploration.",
		Topics:           []string{"RL Algorithms", "Q-Learning", "Neural Networks"},
		EstimatedMinutes: 100,
	},
}

// Service serves the practice question bank.
type Service struct {
	questions []QuestionDTO
}

func NewService() *Service {
	return &Service{questions: bank}
}

// Categories lists the distinct question categories in bank order.
func (s *Service) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, q := range s.questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}
	return out
}

// List filters the bank. Empty or "all" disables a filter; both match case-insensitively.
func (s *Service) List(_ context.Context, category, difficulty string) ([]QuestionDTO, error) {
	category = normalizeFilter(category)
	difficulty = normalizeFilter(difficulty)
	if difficulty != "" && !knownDifficulty(difficulty) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown difficulty %q", difficulty))
	}

	out := make([]QuestionDTO, 0, len(s.questions))
	for _, q := range s.questions {
		if category != "" && !strings.EqualFold(category, q.Category) {
			continue
		}
		if difficulty != "" && !strings.EqualFold(difficulty, string(q.Difficulty)) {
			continue
		}
		q.Topics = append([]string(nil), q.Topics...)
		out = append(out, q)
	}
	return out, nil
}

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func knownDifficulty(v string) bool {
	for _, d := range []catalog.Difficulty{catalog.DifficultyBeginner, catalog.DifficultyIntermediate, catalog.DifficultyAdvanced} {
		if strings.EqualFold(v, string(d)) {
			return true
		}
	}
	return false
}
