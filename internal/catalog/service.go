package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/quanty/quanty-backend/internal/interviews"
	"github.com/quanty/quanty-backend/pkg/enums"
	pkgerrors "github.com/quanty/quanty-backend/pkg/errors"
)

// Difficulty labels how specialised a category is.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// CategoryDTO is a catalog entry plus live counts.
type CategoryDTO struct {
	ID             enums.Category `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Difficulty     Difficulty     `json:"difficulty_level"`
	Tags           []string       `json:"tags"`
	InterviewCount int            `json:"interview_count"`
	ExpertCount    int            `json:"expert_count"`
}

// ExpertDTO is an expert derived from the interviews they gave.
type ExpertDTO struct {
	Name            string           `json:"name"`
	Title           string           `json:"title"`
	Company         string           `json:"company"`
	Expertise       []enums.Category `json:"expertise"`
	InterviewsCount int              `json:"interviews_count"`
}

type entry struct {
	description string
	difficulty  Difficulty
	tags        []string
}

var entries = map[enums.Category]entry{
	enums.CategoryQuant: {
		description: "Quants, algorithmic traders, risk managers and financial engineers from banks and hedge funds.",
		difficulty:  DifficultyAdvanced,
		tags:        []string{"Algorithmic Trading", "Risk Management", "Derivatives", "Quant Research"},
	},
	enums.CategoryML: {
		description: "ML engineers and researchers working on neural networks, computer vision and NLP.",
		difficulty:  DifficultyAdvanced,
		tags:        []string{"Deep Learning", "Computer Vision", "NLP", "Research"},
	},
	enums.CategoryAI: {
		description: "Practitioners building and deploying AI systems, from agents to foundation models.",
		difficulty:  DifficultyIntermediate,
		tags:        []string{"LLMs", "Agents", "Applied AI", "Safety"},
	},
	enums.CategoryBlockchain: {
		description: "Fintech builders and protocol engineers working on blockchains and decentralised finance.",
		difficulty:  DifficultyIntermediate,
		tags:        []string{"FinTech", "Blockchain", "DeFi", "Financial Innovation"},
	},
	enums.CategoryCybersecurity: {
		description: "Security engineers and researchers defending trading and data infrastructure.",
		difficulty:  DifficultyIntermediate,
		tags:        []string{"AppSec", "Cryptography", "Threat Modeling", "Incident Response"},
	},
	enums.CategoryDataScience: {
		description: "Researchers specialising in statistical modeling, econometrics and quantitative methodology.",
		difficulty:  DifficultyIntermediate,
		tags:        []string{"Statistics", "Econometrics", "Research Methods", "Data Science"},
	},
	enums.CategorySoftwareEng: {
		description: "Engineers behind low-latency systems, research platforms and production infrastructure.",
		difficulty:  DifficultyBeginner,
		tags:        []string{"Systems", "Low Latency", "Infrastructure", "Tooling"},
	},
}

type interviewStats interface {
	CategoryStats(ctx context.Context) ([]interviews.CategoryStat, error)
	Experts(ctx context.Context, category enums.Category) ([]interviews.ExpertRow, error)
}

// Service serves the category catalog and the expert directory.
type Service struct {
	stats interviewStats
}

func NewService(stats interviewStats) (*Service, error) {
	if stats == nil {
		return nil, fmt.Errorf("interview stats source is required")
	}
	return &Service{stats: stats}, nil
}

// Categories lists every category in taxonomy order with live counts.
func (s *Service) Categories(ctx context.Context, difficulty string) ([]CategoryDTO, error) {
	stats, err := s.stats.CategoryStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "category stats")
	}
	counts := make(map[enums.Category]interviews.CategoryStat, len(stats))
	for _, stat := range stats {
		counts[stat.Category] = stat
	}

	out := make([]CategoryDTO, 0, len(entries))
	for _, category := range enums.Categories() {
		e := entries[category]
		if difficulty != "" && !strings.EqualFold(difficulty, "all") && !strings.EqualFold(difficulty, string(e.difficulty)) {
			continue
		}
		out = append(out, CategoryDTO{
			ID:             category,
			Name:           category.Label(),
			Description:    e.description,
			Difficulty:     e.difficulty,
			Tags:           append([]string(nil), e.tags...),
			InterviewCount: counts[category].InterviewCount,
			ExpertCount:    counts[category].ExpertCount,
		})
	}
	return out, nil
}

// Experts lists experts, optionally narrowed to one area of expertise. Experts with
// more interviews come first.
func (s *Service) Experts(ctx context.Context, expertise string) ([]ExpertDTO, error) {
	var category enums.Category
	if expertise != "" && !strings.EqualFold(expertise, "all") {
		parsed, err := enums.ParseCategory(strings.ToLower(expertise))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown expertise")
		}
		category = parsed
	}

	rows, err := s.stats.Experts(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list experts")
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].InterviewsCount > rows[j].InterviewsCount })

	out := make([]ExpertDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ExpertDTO{
			Name:            row.Name,
			Title:           row.Role,
			Company:         row.Company,
			Expertise:       row.Categories,
			InterviewsCount: row.InterviewsCount,
		})
	}
	return out, nil
}
