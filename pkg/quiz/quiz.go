// Package quiz builds family identification questions: a photo of a random
// genus from a random family, the family as the answer, and sibling
// families as distractors.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Sternrassler/biodiv-client/pkg/gbif"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/rs/zerolog/log"
)

// Defaults.
const (
	// DefaultDistractors is the number of wrong choices per question.
	DefaultDistractors = 3

	// DefaultMaxAttempts bounds the family/genus/image re-picks per question.
	DefaultMaxAttempts = 10

	// siblingPool is how many sibling families distractors are drawn from.
	siblingPool = query.MaxLimit
)

// Common errors.
var (
	// ErrNoFamilies is returned when the taxon has no accepted families.
	ErrNoFamilies = errors.New("no families found")

	// ErrNoQuestion is returned when no family yielded a usable image.
	ErrNoQuestion = errors.New("no question could be built")
)

// TaxonSource lists the taxa a question is drawn from.
type TaxonSource interface {
	FamiliesInTaxon(ctx context.Context, name string, rank query.Rank) ([]gbif.NameUsage, error)
	GenusInFamily(ctx context.Context, family string) ([]gbif.NameUsage, error)
	SiblingFamilies(ctx context.Context, family string, parentRank query.Rank, limit int) ([]gbif.NameUsage, error)
}

// Question is one multiple-choice family identification question.
type Question struct {
	ImageURL    string   `json:"image_url"`
	SpeciesName string   `json:"species_name"`
	Correct     string   `json:"correct"`
	Choices     []string `json:"choices"`
}

// Check reports whether choice is the correct family.
func (q *Question) Check(choice string) bool {
	return choice == q.Correct
}

// Builder builds questions. Rand must not be shared between goroutines.
type Builder struct {
	Taxa   TaxonSource
	Images gbif.ImageFinder
	Rand   *rand.Rand

	// Distractors and MaxAttempts default to DefaultDistractors and DefaultMaxAttempts.
	Distractors int
	MaxAttempts int
}

// Next builds a question for the families below name at rank.
func (b *Builder) Next(ctx context.Context, name string, rank query.Rank) (*Question, error) {
	logger := log.With().Str("component", "quiz").Logger()

	r := b.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	attempts := b.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	distractors := b.Distractors
	if distractors <= 0 {
		distractors = DefaultDistractors
	}

	families, err := b.Taxa.FamiliesInTaxon(ctx, name, rank)
	if err != nil {
		return nil, fmt.Errorf("list families of %s: %w", name, err)
	}
	if len(families) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFamilies, name)
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		family := families[r.IntN(len(families))]

		genera, err := b.Taxa.GenusInFamily(ctx, family.ScientificName)
		if err != nil {
			return nil, fmt.Errorf("list genera of %s: %w", family.ScientificName, err)
		}
		if len(genera) == 0 {
			logger.Debug().Str("family", family.ScientificName).Int("attempt", attempt).Msg("Family has no genera")
			continue
		}

		genus := genera[r.IntN(len(genera))]

		img, err := b.Images.SelectRandomImage(ctx, genus.Key)
		if errors.Is(err, gbif.ErrNoImages) {
			logger.Debug().Str("genus", genus.ScientificName).Int("attempt", attempt).Msg("Genus has no images")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("select image of %s: %w", genus.ScientificName, err)
		}

		siblings, err := b.Taxa.SiblingFamilies(ctx, family.ScientificName, query.RankOrder, siblingPool)
		if err != nil {
			return nil, fmt.Errorf("list siblings of %s: %w", family.ScientificName, err)
		}

		choices := []string{family.ScientificName}
		for _, i := range r.Perm(len(siblings)) {
			if len(choices) > distractors {
				break
			}
			choices = append(choices, siblings[i].ScientificName)
		}
		r.Shuffle(len(choices), func(i, j int) {
			choices[i], choices[j] = choices[j], choices[i]
		})

		logger.Info().
			Str("family", family.ScientificName).
			Str("genus", genus.ScientificName).
			Str("species", img.Label).
			Int("choices", len(choices)).
			Msg("Question built")

		return &Question{
			ImageURL:    img.URL,
			SpeciesName: img.Label,
			Correct:     family.ScientificName,
			Choices:     choices,
		}, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoQuestion, attempts)
}
