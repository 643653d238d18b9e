package service

import (
	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/scoring/dto"
	"github.com/google/uuid"
)

// Summarize weighs an event's scores against the category set. Unscored categories
// add nothing to the total but still count toward the maximum.
func Summarize(categories []entity.ScoringCategory, scores []entity.EventScore, threshold int) dto.Summary {
	weights := make(map[uuid.UUID]int, len(categories))
	sum := dto.Summary{CategoryCount: len(categories), Threshold: threshold}
	for _, c := range categories {
		weights[c.ID] = c.Weight
		sum.MaxScore += entity.MaxScoreLevel * c.Weight
	}

	scored := make(map[uuid.UUID]struct{}, len(scores))
	for _, s := range scores {
		weight, ok := weights[s.CategoryID]
		if !ok {
			continue
		}
		if _, dup := scored[s.CategoryID]; dup {
			continue
		}
		scored[s.CategoryID] = struct{}{}
		sum.TotalScore += s.Score * weight
	}

	sum.ScoredCount = len(scored)
	sum.IsComplete = sum.ScoredCount == sum.CategoryCount
	sum.MeetsThreshold = sum.TotalScore >= threshold
	return sum
}
