package script

import (
	"strings"

	"bookreel/internal/types"
)

// toneInstructions flavor the completion prompt per tone.
var toneInstructions = map[types.Tone]string{
	types.ToneMotivational: "Sound like a coach who just finished the book and cannot keep it to themselves. Urgent, energizing, second person.",
	types.ToneEmotional:    "Sound warm and vulnerable, like recommending a book that changed something personal. Soft intensity, no melodrama.",
	types.ToneEducational:  "Sound like a sharp explainer video. Concrete claims, simple words, one idea per sentence.",
	types.ToneAggressive:   "Sound blunt and confrontational, calling out the viewer directly. Short, hard sentences.",
	types.ToneCalm:         "Sound quiet and steady, like a late-night reading recommendation. Unhurried, reassuring.",
}

// toneTemplate holds the fragment pools the deterministic generator
// assembles scripts from.
type toneTemplate struct {
	hooks  []string
	bodies []string
	ctas   []string
}

var toneTemplates = map[types.Tone]toneTemplate{
	types.ToneMotivational: {
		hooks: []string{
			"Stop scrolling. This book will change how you see yourself.",
			"You keep waiting for motivation. This book says stop waiting.",
			"One book. One decision. A completely different year ahead.",
		},
		bodies: []string{
			"Every page pushes you one step past the excuses you keep recycling.",
			"It breaks big intimidating change into moves you can make today.",
			"People finish it and immediately start doing the thing they postponed for years.",
			"It does not hype you up. It hands you a plan.",
		},
		ctas: []string{
			"Read it this week and thank yourself next month.",
			"Grab a copy before you talk yourself out of it.",
			"Start tonight. Future you is already grateful.",
		},
	},
	types.ToneEmotional: {
		hooks: []string{
			"Some books entertain you. This one stays with you.",
			"I did not expect a book to understand me this well.",
			"This story found me at exactly the right moment.",
		},
		bodies: []string{
			"It puts words to feelings you never managed to explain.",
			"You will see yourself in these pages, the good parts and the bruised ones.",
			"By the last chapter it feels less like reading and more like being heard.",
			"It is tender where it needs to be and honest everywhere else.",
		},
		ctas: []string{
			"Read it when you are ready to feel something real.",
			"Keep tissues close and your evening free.",
			"Give it one quiet night. It will give you back more.",
		},
	},
	types.ToneEducational: {
		hooks: []string{
			"Here is a book that explains what school never did.",
			"Most people get this topic wrong. This book fixes that.",
			"Want to actually understand this? Start with one book.",
		},
		bodies: []string{
			"It turns a complicated subject into clear, usable ideas.",
			"Every chapter ends with something you can apply the same day.",
			"The examples are concrete, the evidence is real, the writing is plain.",
			"You will finish it knowing more than most people ever bother to learn.",
		},
		ctas: []string{
			"Read it once for the ideas, keep it forever as a reference.",
			"Add it to your list if you are serious about learning this.",
			"One book, a few evenings, a permanently sharper picture.",
		},
	},
	types.ToneAggressive: {
		hooks: []string{
			"You are not busy. You are avoiding this book.",
			"Hard truth: your problem has been written about, and you ignored it.",
			"This book does not care about your comfort zone.",
		},
		bodies: []string{
			"It calls out every excuse you hide behind, page after page.",
			"No soft landings here, just the truth and what to do about it.",
			"It is uncomfortable because it is accurate.",
			"Read it angry if you have to. Just read it.",
		},
		ctas: []string{
			"Stop stalling. Get the book.",
			"Read it or keep pretending the problem is everyone else.",
			"Your move. The book is right there.",
		},
	},
	types.ToneCalm: {
		hooks: []string{
			"Here is a book for the quiet hours.",
			"When the day gets loud, this book is where I go.",
			"Some stories ask nothing of you except your attention.",
		},
		bodies: []string{
			"It moves slowly, on purpose, and every page earns its place.",
			"Reading it feels like a long exhale at the end of a heavy week.",
			"There is no rush in it, only room to think.",
			"It leaves you settled in a way few things do.",
		},
		ctas: []string{
			"Save it for your next slow evening.",
			"Make some tea, find a chair, open to page one.",
			"Let it be the last thing you read before sleep.",
		},
	},
}

// templateScript assembles a deterministic script from the tone's fragment
// pools plus the first clause of the description. Fragment choice is a
// stable function of the brief, so identical briefs produce identical
// scripts.
func templateScript(brief types.GenerationRequest, targetWords int) string {
	tpl, ok := toneTemplates[brief.Tone]
	if !ok {
		tpl = toneTemplates[types.ToneMotivational]
	}
	seed := briefSeed(brief.Title, brief.Description)

	parts := []string{
		pick(tpl.hooks, seed),
		describeSentence(brief.Title, brief.Description),
	}

	// Grow the body until the word target is roughly met, cycling the pool
	// at most once so short targets stay short.
	words := countWords(strings.Join(parts, " "))
	for i := 0; i < len(tpl.bodies) && words < targetWords; i++ {
		body := pick(tpl.bodies, seed+i)
		parts = append(parts, body)
		words += countWords(body)
	}

	parts = append(parts, pick(tpl.ctas, seed+1))
	return strings.Join(parts, " ")
}

// describeSentence turns the brief into one connective sentence using the
// first clause of the description.
func describeSentence(title, description string) string {
	clause := firstClause(description)
	if clause == "" {
		return "\"" + title + "\" earns every bit of the attention it gets."
	}
	return "\"" + title + "\" is about " + lowerFirst(clause) + "."
}

// firstClause returns the description up to the first clause boundary.
func firstClause(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".,;:!?"); i > 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func pick(pool []string, seed int) string {
	if len(pool) == 0 {
		return ""
	}
	if seed < 0 {
		seed = -seed
	}
	return pool[seed%len(pool)]
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// briefSeed hashes the brief into a small stable number used for fragment
// selection. No randomness so repeated calls agree.
func briefSeed(title, description string) int {
	h := 0
	for _, r := range title + "|" + description {
		h = (h*31 + int(r)) % 1000003
	}
	return h
}
