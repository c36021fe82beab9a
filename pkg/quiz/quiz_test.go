package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/Sternrassler/biodiv-client/pkg/gbif"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaxa struct {
	families []gbif.NameUsage
	genera   map[string][]gbif.NameUsage
	siblings map[string][]gbif.NameUsage
	err      error
}

func (f *fakeTaxa) FamiliesInTaxon(ctx context.Context, name string, rank query.Rank) ([]gbif.NameUsage, error) {
	return f.families, f.err
}

func (f *fakeTaxa) GenusInFamily(ctx context.Context, family string) ([]gbif.NameUsage, error) {
	return f.genera[family], nil
}

func (f *fakeTaxa) SiblingFamilies(ctx context.Context, family string, parentRank query.Rank, limit int) ([]gbif.NameUsage, error) {
	return f.siblings[family], nil
}

type fakeImages struct {
	byTaxon map[int]*gbif.Image
	err     error
	calls   int
}

func (f *fakeImages) SelectRandomImage(ctx context.Context, taxonKey int) (*gbif.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	img, ok := f.byTaxon[taxonKey]
	if !ok {
		return nil, fmt.Errorf("%w: taxon %d", gbif.ErrNoImages, taxonKey)
	}
	return img, nil
}

func usages(names ...string) []gbif.NameUsage {
	out := make([]gbif.NameUsage, len(names))
	for i, n := range names {
		out[i] = gbif.NameUsage{Key: i + 1, ScientificName: n}
	}
	return out
}

func TestBuilder_Next(t *testing.T) {
	taxa := &fakeTaxa{
		families: usages("Apidae"),
		genera: map[string][]gbif.NameUsage{
			"Apidae": {{Key: 1334757, ScientificName: "Apis"}},
		},
		siblings: map[string][]gbif.NameUsage{
			"Apidae": usages("Vespidae", "Formicidae", "Halictidae", "Megachilidae", "Colletidae"),
		},
	}
	images := &fakeImages{byTaxon: map[int]*gbif.Image{
		1334757: {URL: "https://img.example/apis.jpg", Label: "Apis mellifera"},
	}}

	b := &Builder{Taxa: taxa, Images: images, Rand: rand.New(rand.NewPCG(7, 7))}

	q, err := b.Next(context.Background(), "Insecta", query.RankClass)
	require.NoError(t, err)

	assert.Equal(t, "https://img.example/apis.jpg", q.ImageURL)
	assert.Equal(t, "Apis mellifera", q.SpeciesName)
	assert.Equal(t, "Apidae", q.Correct)
	assert.Len(t, q.Choices, 4)
	assert.Contains(t, q.Choices, "Apidae")

	seen := map[string]bool{}
	for _, c := range q.Choices {
		assert.False(t, seen[c], "duplicate choice %q", c)
		seen[c] = true
	}

	assert.True(t, q.Check("Apidae"))
	assert.False(t, q.Check(firstOther(q.Choices, "Apidae")))
}

func firstOther(choices []string, correct string) string {
	for _, c := range choices {
		if c != correct {
			return c
		}
	}
	return ""
}

func TestBuilder_Next_FewSiblings(t *testing.T) {
	taxa := &fakeTaxa{
		families: usages("Apidae"),
		genera:   map[string][]gbif.NameUsage{"Apidae": {{Key: 10, ScientificName: "Apis"}}},
		siblings: map[string][]gbif.NameUsage{"Apidae": usages("Vespidae")},
	}
	images := &fakeImages{byTaxon: map[int]*gbif.Image{10: {URL: "u", Label: "Apis mellifera"}}}

	b := &Builder{Taxa: taxa, Images: images, Rand: rand.New(rand.NewPCG(1, 1))}

	q, err := b.Next(context.Background(), "Insecta", query.RankClass)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Apidae", "Vespidae"}, q.Choices)
}

func TestBuilder_Next_RepicksFamilyWithoutGeneraOrImages(t *testing.T) {
	taxa := &fakeTaxa{
		families: usages("Emptyidae", "Blindidae", "Apidae"),
		genera: map[string][]gbif.NameUsage{
			"Blindidae": {{Key: 99, ScientificName: "Invisibilis"}},
			"Apidae":    {{Key: 10, ScientificName: "Apis"}},
		},
		siblings: map[string][]gbif.NameUsage{"Apidae": usages("Vespidae", "Formicidae", "Halictidae")},
	}
	images := &fakeImages{byTaxon: map[int]*gbif.Image{10: {URL: "u", Label: "Apis mellifera"}}}

	b := &Builder{Taxa: taxa, Images: images, Rand: rand.New(rand.NewPCG(3, 4)), MaxAttempts: 200}

	q, err := b.Next(context.Background(), "Insecta", query.RankClass)
	require.NoError(t, err)
	assert.Equal(t, "Apidae", q.Correct)
}

func TestBuilder_Next_GivesUp(t *testing.T) {
	taxa := &fakeTaxa{families: usages("Emptyidae")}
	images := &fakeImages{}

	b := &Builder{Taxa: taxa, Images: images, MaxAttempts: 4}

	_, err := b.Next(context.Background(), "Insecta", query.RankClass)
	assert.ErrorIs(t, err, ErrNoQuestion)
	assert.Equal(t, 0, images.calls)
}

func TestBuilder_Next_NoFamilies(t *testing.T) {
	b := &Builder{Taxa: &fakeTaxa{}, Images: &fakeImages{}}

	_, err := b.Next(context.Background(), "Nothing", query.RankClass)
	assert.ErrorIs(t, err, ErrNoFamilies)
}

func TestBuilder_Next_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	b := &Builder{Taxa: &fakeTaxa{err: boom}, Images: &fakeImages{}}
	_, err := b.Next(context.Background(), "Insecta", query.RankClass)
	assert.ErrorIs(t, err, boom)

	b = &Builder{
		Taxa: &fakeTaxa{
			families: usages("Apidae"),
			genera:   map[string][]gbif.NameUsage{"Apidae": {{Key: 10, ScientificName: "Apis"}}},
		},
		Images: &fakeImages{err: boom},
	}
	_, err = b.Next(context.Background(), "Insecta", query.RankClass)
	assert.ErrorIs(t, err, boom)
}

func TestBuilder_Next_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Builder{Taxa: &fakeTaxa{families: usages("Apidae")}, Images: &fakeImages{}}
	_, err := b.Next(ctx, "Insecta", query.RankClass)
	assert.ErrorIs(t, err, context.Canceled)
}
