package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"shelfkeeper/internal/advisory"
	"shelfkeeper/internal/services"
)

type stubGen struct {
	reply string
	err   error
	calls int
}

func (s *stubGen) Generate(context.Context, []*genai.Content, *genai.Schema) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newAdvisory(t *testing.T, gen advisory.Generator) *services.AdvisoryService {
	t.Helper()
	ws, _ := newWorkspace(t)
	return &services.AdvisoryService{Advisor: advisory.New(gen), Workspace: ws}
}

func TestAdvisory_PriceFromModel(t *testing.T) {
	svc := newAdvisory(t, &stubGen{reply: `{"suggestedPrice": 0.8, "reasoning": "One day left."}`})
	got, err := svc.SuggestPrice(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Fallback || !got.SuggestedPrice.Equal(decimal.RequireFromString("0.8")) || got.ProductName != "Semi Skimmed Milk 1L" {
		t.Fatalf("bad advice %+v", got)
	}
}

func TestAdvisory_PriceFallsBack(t *testing.T) {
	for name, gen := range map[string]advisory.Generator{
		"model error":    &stubGen{err: errors.New("quota exceeded")},
		"not configured": nil,
	} {
		svc := newAdvisory(t, gen)
		got, err := svc.SuggestPrice(context.Background(), "u1", "b1")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !got.Fallback || got.Reasoning != services.FallbackPriceReason {
			t.Fatalf("%s: want fallback, got %+v", name, got)
		}
		if !got.SuggestedPrice.Equal(decimal.RequireFromString("0.625")) {
			t.Fatalf("%s: want half of 1.25, got %s", name, got.SuggestedPrice)
		}
	}
}

func TestAdvisory_PriceUnknownBatch(t *testing.T) {
	svc := newAdvisory(t, &stubGen{})
	if _, err := svc.SuggestPrice(context.Background(), "u1", "missing"); !errors.Is(err, services.ErrBatchNotFound) {
		t.Fatalf("want ErrBatchNotFound, got %v", err)
	}
}

func TestAdvisory_BundleUsesCandidatesAndFallsBack(t *testing.T) {
	gen := &stubGen{reply: `{"title":"Weekend Rescue Box","tagline":"Three staples, one price."}`}
	svc := newAdvisory(t, gen)
	got, err := svc.SuggestBundle(context.Background(), "u1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Weekend Rescue Box" || len(got.Items) != 3 || got.Fallback {
		t.Fatalf("bad advice %+v", got)
	}

	gen.err = errors.New("timeout")
	got, err = svc.SuggestBundle(context.Background(), "u1", []string{"Milk"})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Fallback || got.BundleIdea != services.FallbackBundle {
		t.Fatalf("want fallback, got %+v", got)
	}
}

func TestAdvisory_LabelHasNoFallback(t *testing.T) {
	svc := newAdvisory(t, nil)
	if _, err := svc.AnalyzeLabel(context.Background(), []byte{1}, ""); !errors.Is(err, advisory.ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}
