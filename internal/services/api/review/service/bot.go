package service

import (
	"context"
	"strings"
	"time"

	"reviewnexus/internal/core/resolve"
	pstrings "reviewnexus/internal/platform/strings"
	"reviewnexus/internal/services/api/review/domain"
	"reviewnexus/internal/services/api/review/repo"
)

// PostBotReview seeds one synthetic review per wall-clock hour.
// The hourly check is a best-effort read-then-write race, a duplicate
// within the hour is cosmetic and non-corrupting
func (s *Svc) PostBotReview(ctx context.Context) (domain.BotResult, error) {
	hourStart := s.now().Truncate(time.Hour)
	posted, err := s.Repo.BotPostedSince(ctx, hourStart)
	if err != nil {
		s.log.Error().Err(err).Msg("bot hour check failed")
		return domain.BotResult{OK: false, Message: s.storageMessage(err)}, nil
	}
	if posted {
		return domain.BotResult{OK: true, Skipped: true, Message: "already posted this hour"}, nil
	}

	// products already covered by a real commented review are off limits
	available := make([]domain.BotCandidate, 0, len(domain.BotCandidates))
	for _, c := range domain.BotCandidates {
		covered, err := s.Repo.HasHumanComment(ctx, c.Platform, c.ProductID)
		if err != nil {
			s.log.Error().Err(err).Str("product_id", c.ProductID).Msg("bot candidate check failed")
			return domain.BotResult{OK: false, Message: s.storageMessage(err)}, nil
		}
		if !covered {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return domain.BotResult{OK: true, Skipped: true, Message: "all candidate titles already have comments"}, nil
	}

	picked := available[s.randInt(len(available))]
	score := s.randInt(101)
	comment := domain.BotComments[s.randInt(len(domain.BotComments))]
	tags := s.sampleTags(2 + s.randInt(3))

	source := resolve.CanonicalURL(picked.Platform, picked.ProductID)
	meta := s.resolveMetadata(ctx, picked.Platform, picked.ProductID, []string{source})

	productName := meta.Title
	if productName == "" {
		productName = strings.ToUpper(picked.ProductID)
	}

	row := repo.InsertRow{
		ProductID:      picked.ProductID,
		Platform:       picked.Platform,
		ProductName:    pstrings.Ptr(productName),
		SourceURL:      pstrings.Ptr(source),
		PerformerNames: emptyIfNil(meta.PerformerNames),
		Author:         domain.AuthorBot,
		Score:          score,
		Comment:        pstrings.Ptr(comment),
		Tags:           tags,
	}
	if _, err := s.Repo.Insert(ctx, row); err != nil {
		s.log.Error().Err(err).Str("product_id", picked.ProductID).Msg("bot insert failed")
		return domain.BotResult{OK: false, Message: s.storageMessage(err)}, nil
	}

	return domain.BotResult{
		OK:        true,
		Platform:  picked.Platform,
		ProductID: picked.ProductID,
		Score:     score,
	}, nil
}

// sampleTags draws n vocabulary tags uniformly without replacement
// using a partial Fisher-Yates pass
func (s *Svc) sampleTags(n int) []string {
	pool := make([]string, len(domain.TagVocabulary))
	copy(pool, domain.TagVocabulary)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + s.randInt(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
