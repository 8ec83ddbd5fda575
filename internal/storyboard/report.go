package storyboard

import (
	"fmt"
	"strings"

	"bookreel/internal/types"
)

// renderScenes formats the deterministic scene plan as report body text.
func renderScenes(scenes []types.StoryboardScene) string {
	var sb strings.Builder
	for _, s := range scenes {
		sb.WriteString(fmt.Sprintf("Scene %d (%.1fs - %.1fs)\n", s.Index, s.StartSec, s.EndSec))
		switch s.Framing {
		case types.FramingHook:
			sb.WriteString("  Framing: attention hook, lead with the strongest visual\n")
		case types.FramingCTA:
			sb.WriteString("  Framing: call to action, hold on the book\n")
		}
		sb.WriteString("  Visual: " + s.Visual + "\n")
		sb.WriteString("  Keywords: " + strings.Join(s.Keywords, ", ") + "\n")
		sb.WriteString("  Narration: " + s.Notes + "\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderReport wraps scene content in the standard production report. The
// surrounding sections are identical no matter which path produced the
// scene text.
func renderReport(brief types.GenerationRequest, sceneText string, sceneCount int) string {
	var sb strings.Builder
	sb.WriteString("VIDEO STORYBOARD\n")
	sb.WriteString("================\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", brief.Title))
	sb.WriteString(fmt.Sprintf("Tone: %s | Length: %ds | Scenes: %d\n\n", brief.Tone, brief.Duration, sceneCount))

	sb.WriteString("SCENE PLAN\n")
	sb.WriteString("----------\n")
	sb.WriteString(sceneText)
	sb.WriteString("\n\n")

	sb.WriteString("PRODUCTION GUIDANCE\n")
	sb.WriteString("-------------------\n")
	sb.WriteString("- Source everything vertical 9:16 (1080x1920).\n")
	sb.WriteString("- No shot longer than 5 seconds; cut on narration beats.\n")
	sb.WriteString("- Keep captions inside the bottom safe zone.\n")
	sb.WriteString("- Match clip energy to the narration tone.\n\n")

	sb.WriteString("PLATFORM NOTES\n")
	sb.WriteString("--------------\n")
	sb.WriteString("- The same file works for TikTok, Reels and Shorts.\n")
	sb.WriteString("- The first 2 seconds decide the scroll, front-load the hook.\n")
	sb.WriteString("- Put the book title in the post caption as well.\n\n")

	sb.WriteString("EXPORT CHECKLIST\n")
	sb.WriteString("----------------\n")
	sb.WriteString("[ ] Voiceover synced to the final cut\n")
	sb.WriteString("[ ] Captions proofread against the script\n")
	sb.WriteString("[ ] Thumbnail frame selected\n")
	sb.WriteString("[ ] Audio loudness checked on a phone speaker\n")
	return sb.String()
}
