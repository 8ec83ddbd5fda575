package storyboard

import "bookreel/internal/types"

// visualEntry is one curated shot idea: a generic, stock-searchable visual
// plus the keywords that find it.
type visualEntry struct {
	Visual   string
	Keywords []string
}

// toneLibrary backs the deterministic storyboard path. Entries are
// intentionally generic so any stock provider can satisfy them.
var toneLibrary = map[types.Tone][]visualEntry{
	types.ToneMotivational: {
		{"Sunrise over a city skyline, warm light building", []string{"sunrise", "city skyline", "morning"}},
		{"Runner climbing stadium steps in golden hour", []string{"running", "stairs", "golden hour"}},
		{"Open notebook with a pen beside a steaming mug", []string{"notebook", "coffee", "desk"}},
		{"Hands raised on a mountain summit at dawn", []string{"mountain", "summit", "achievement"}},
	},
	types.ToneEmotional: {
		{"Rain tracing down a window in soft focus", []string{"rain", "window", "reflection"}},
		{"Person reading alone under a warm lamp", []string{"reading", "lamp", "cozy"}},
		{"Old photographs spread across a wooden table", []string{"photographs", "memories", "vintage"}},
		{"Waves rolling onto an empty evening beach", []string{"ocean", "beach", "dusk"}},
	},
	types.ToneEducational: {
		{"Macro shot of a pen underlining a printed page", []string{"pen", "page", "closeup"}},
		{"Library aisle with tall shelves, slow push-in", []string{"library", "bookshelves", "aisle"}},
		{"Chalk diagrams filling a blackboard", []string{"chalkboard", "diagram", "study"}},
		{"Stack of hardcovers beside an open laptop", []string{"books", "laptop", "desk"}},
	},
	types.ToneAggressive: {
		{"Neon-lit street at night with fast traffic", []string{"neon", "night city", "traffic"}},
		{"Boxer wrapping hands in a dim gym", []string{"boxing", "gym", "grit"}},
		{"Storm clouds rolling over a skyline time-lapse", []string{"storm", "timelapse", "skyline"}},
		{"Sparks flying from a grinder in slow motion", []string{"sparks", "slow motion", "industrial"}},
	},
	types.ToneCalm: {
		{"Morning mist drifting over a still lake", []string{"lake", "mist", "morning"}},
		{"Tea steam curling in front of a bright window", []string{"tea", "steam", "window"}},
		{"Hammock swaying between trees in soft light", []string{"hammock", "trees", "relax"}},
		{"Candle flame beside an open book on linen", []string{"candle", "book", "bed"}},
	},
}

// entriesForTone returns the curated pool for a tone, defaulting to the
// motivational pool for anything unrecognized.
func entriesForTone(tone types.Tone) []visualEntry {
	if entries, ok := toneLibrary[tone]; ok {
		return entries
	}
	return toneLibrary[types.ToneMotivational]
}
