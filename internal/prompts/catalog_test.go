package prompts

import (
	"math/rand"
	"testing"

	"go.uber.org/zap"
)

func newTestCatalog() *Catalog {
	return NewCatalog(rand.New(rand.NewSource(1)), zap.NewNop().Sugar())
}

func TestGenerate_UnknownCategoriesFallBackToReflection(t *testing.T) {
	c := newTestCatalog()
	reflection := promptTemplates[DefaultCategory]

	for i := 0; i < 50; i++ {
		prompt := c.Generate([]string{"astrology", "weather"})
		if !contains(reflection, prompt) {
			t.Fatalf("prompt %q is not a reflection template", prompt)
		}
	}
}

func TestGenerate_EmptyRequestFallsBack(t *testing.T) {
	c := newTestCatalog()
	if prompt := c.Generate(nil); !contains(promptTemplates[DefaultCategory], prompt) {
		t.Fatalf("prompt %q is not a reflection template", prompt)
	}
}

func TestGenerate_StaysWithinRequestedCategories(t *testing.T) {
	c := newTestCatalog()
	allowed := append([]string{}, promptTemplates["gratitude"]...)
	allowed = append(allowed, promptTemplates["future"]...)

	for i := 0; i < 100; i++ {
		prompt := c.Generate([]string{"gratitude", "future", "bogus"})
		if !contains(allowed, prompt) {
			t.Fatalf("prompt %q not from requested categories", prompt)
		}
	}
}

func TestFilterCategories(t *testing.T) {
	got := FilterCategories([]string{"bogus", "emotions", "reflection", "nope"})
	if len(got) != 2 || got[0] != "emotions" || got[1] != "reflection" {
		t.Fatalf("FilterCategories = %v", got)
	}
}

func TestCategories_CoversAllTemplates(t *testing.T) {
	cats := Categories()
	if len(cats) != len(promptTemplates) {
		t.Fatalf("Categories() has %d entries, templates have %d", len(cats), len(promptTemplates))
	}
	for id := range promptTemplates {
		if _, ok := cats[id]; !ok {
			t.Errorf("category %q missing a description", id)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
