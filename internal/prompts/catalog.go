// Package prompts picks daily journal prompts from fixed per-category
// template tables.
package prompts

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"
)

// DefaultCategory is used when a request carries no recognized category.
const DefaultCategory = "reflection"

var promptTemplates = map[string][]string{
	"gratitude": {
		"What are three things you're grateful for today?",
		"Who is someone that made a positive impact on your life recently?",
		"What small joy did you experience today that you might normally overlook?",
		"What aspect of your health are you most grateful for right now?",
		"What's something beautiful you noticed in your environment today?",
	},
	"reflection": {
		"What was the most meaningful part of your day?",
		"What's one thing you learned today?",
		"How did you take care of yourself today?",
		"What would you do differently if you could repeat today?",
		"What's something you accomplished today that you're proud of?",
	},
	"learning": {
		"What new skill would you like to develop in the next month?",
		"What's something you learned recently that surprised you?",
		"What book, article, or conversation taught you something valuable lately?",
		"What mistake did you make recently, and what did you learn from it?",
		"What's one area of your life where you'd like to gain more knowledge?",
	},
	"emotions": {
		"How would you describe your emotional state today?",
		"What triggered strong emotions for you today, and how did you respond?",
		"What's one emotion you experienced today that you'd like to understand better?",
		"How did you manage a difficult emotion today?",
		"What brought you joy or peace today?",
	},
	"future": {
		"What's one thing you're looking forward to in the coming week?",
		"What's a small step you could take tomorrow toward an important goal?",
		"How do you want to feel at the end of this month?",
		"What's one habit you'd like to build in the near future?",
		"Visualize your ideal day one year from now. What does it look like?",
	},
}

var categoryDescriptions = map[string]string{
	"gratitude":  "Prompts to reflect on things you're thankful for",
	"reflection": "Prompts to reflect on your day and experiences",
	"learning":   "Prompts focused on growth and knowledge acquisition",
	"emotions":   "Prompts to explore your emotional landscape",
	"future":     "Prompts for goal-setting and future planning",
}

// Catalog hands out prompts. It keeps no persistent state; output is a
// pure function of the template tables and the injected random source.
type Catalog struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.SugaredLogger
}

func NewCatalog(rng *rand.Rand, logger *zap.SugaredLogger) *Catalog {
	return &Catalog{rng: rng, logger: logger}
}

// Generate returns a random prompt drawn from the requested categories.
// Unknown categories are dropped; if none survive, the reflection
// category is used and the fallback is logged.
func (c *Catalog) Generate(categories []string) string {
	valid := FilterCategories(categories)
	if len(valid) == 0 {
		c.logger.Warnw("no valid prompt categories requested, falling back",
			"requested", categories, "fallback", DefaultCategory)
		valid = []string{DefaultCategory}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	category := valid[c.rng.Intn(len(valid))]
	templates := promptTemplates[category]
	return templates[c.rng.Intn(len(templates))]
}

// FilterCategories returns the subset of tags that name a known category,
// preserving order.
func FilterCategories(categories []string) []string {
	var valid []string
	for _, cat := range categories {
		if _, ok := promptTemplates[cat]; ok {
			valid = append(valid, cat)
		}
	}
	return valid
}

// Categories returns the known category ids with their descriptions.
func Categories() map[string]string {
	out := make(map[string]string, len(categoryDescriptions))
	for id, desc := range categoryDescriptions {
		out[id] = desc
	}
	return out
}
