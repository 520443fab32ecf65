package classifier

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
)

type signal struct {
	reason models.AIReason
	weight float64
	re     *regexp.Regexp
}

// signals are matched case-insensitively on word boundaries. A single hit
// scores its weight; extra hits in the same category add a small bonus.
var signalSpecs = []struct {
	reason models.AIReason
	weight float64
	terms  []string
}{
	{models.AIChildNudity, 0.95, []string{`naked (child|children|kid|kids|minor|minors)`, `(child|minor) nudes?`}},
	{models.AIPedophilia, 0.95, []string{`pedo(phile|philia)?`, `cp links?`, `underage (sex|porn)`}},
	{models.AIChildViolence, 0.9, []string{`(beat|beating|hurt|hurting) (a |the )?(child|kid|toddler|baby)`, `child abuse video`}},
	{models.AIViolenceAgainstWomen, 0.85, []string{`(beat|beating|hit|hitting) (your|his|my) (wife|girlfriend)`, `women deserve (to be hit|violence)`}},
	{models.AIRape, 0.9, []string{`rape`, `raped`, `raping`}},
	{models.AIExtremeViolence, 0.8, []string{`beheading`, `gore video`, `dismember(ed|ment)?`, `execution video`}},
	{models.AIHateSpeech, 0.8, []string{`gas the`, `(kill|exterminate) all`, `subhuman`, `ethnic cleansing`}},
	{models.AITerrorism, 0.9, []string{`join (isis|the jihad)`, `bomb making`, `martyrdom operation`, `how to build a bomb`}},
}

// Heuristic is the local classifier used when no AI provider is configured.
// It only sees text; media references are ignored.
type Heuristic struct {
	signals []signal
	filter  *publishFilter
}

func NewHeuristic() *Heuristic {
	h := &Heuristic{filter: newPublishFilter()}
	for _, sig := range signalSpecs {
		for _, term := range sig.terms {
			h.signals = append(h.signals, signal{
				reason: sig.reason,
				weight: sig.weight,
				re:     regexp.MustCompile(`(?i)\b` + term + `\b`),
			})
		}
	}
	return h
}

func (h *Heuristic) CheckContent(ctx context.Context, text string, _ []string) (moderation.CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return moderation.CheckResult{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return moderation.CheckResult{}, nil
	}

	hits := make(map[models.AIReason]int)
	scores := make(map[models.AIReason]float64)
	for _, s := range h.signals {
		if s.re.MatchString(text) {
			hits[s.reason]++
			scores[s.reason] = s.weight
		}
	}

	var result moderation.CheckResult
	for _, sig := range signalSpecs {
		n := hits[sig.reason]
		if n == 0 {
			continue
		}
		result.Flags = append(result.Flags, sig.reason)
		score := math.Min(1, scores[sig.reason]+0.05*float64(n-1))
		result.Confidence = math.Max(result.Confidence, score)
	}
	return result, nil
}

// FilterContent is the publish-time filter applied to new posts and
// comments. It returns false and a reason code when the text is rejected.
func (h *Heuristic) FilterContent(text string) (bool, string) {
	return h.filter.check(text)
}

func (h *Heuristic) RejectionMessage(reason string) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return "Your content does not meet our community guidelines."
}

var bannedWords = []string{
	"fuck", "fucking", "shit", "bullshit", "asshole", "bitch", "cunt",
	"porn", "porno", "nudes",
	"scam", "scammer", "phishing", "malware",
}

var rejectionMessages = map[string]string{
	"inappropriate_language":   "Your content contains inappropriate language.",
	"contact_info_not_allowed": "Contact information is not allowed.",
	"spam_detected":            "Your content appears to be spam.",
	"excessive_caps":           "Please avoid using excessive capital letters.",
}

type publishFilter struct {
	banned       []*regexp.Regexp
	email        *regexp.Regexp
	phone        *regexp.Regexp
	repeatedChar *regexp.Regexp
	allCaps      *regexp.Regexp
}

func newPublishFilter() *publishFilter {
	f := &publishFilter{
		email:        regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phone:        regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		repeatedChar: repeatedCharPattern(),
		allCaps:      regexp.MustCompile(`\b[A-Z]{5,}\b`),
	}
	for _, word := range bannedWords {
		f.banned = append(f.banned, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// RE2 has no backreferences, so each character gets its own run.
func repeatedCharPattern() *regexp.Regexp {
	runs := make([]string, 0, 29)
	for c := 'a'; c <= 'z'; c++ {
		runs = append(runs, string(c)+"{6,}")
	}
	runs = append(runs, `!{6,}`, `\?{6,}`, `\.{6,}`)
	return regexp.MustCompile(`(?i)(` + strings.Join(runs, "|") + `)`)
}

func (f *publishFilter) check(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range f.banned {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if f.email.MatchString(text) || f.phone.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if f.repeatedChar.MatchString(text) {
		return false, "spam_detected"
	}
	if len(f.allCaps.FindAllString(text, -1)) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}
