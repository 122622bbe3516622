// Package emotion classifies message text with keyword heuristics.
// All functions are pure and look only at the latest message.
package emotion

import (
	"regexp"
	"strings"
)

var (
	sadPattern      = regexp.MustCompile(`sad|depressed|upset|lonely|hurt|crying|pain|broken|heartbreak`)
	angryPattern    = regexp.MustCompile(`angry|furious|pissed|hate|mad|annoyed|irritated`)
	romanticPattern = regexp.MustCompile(`love|crush|like you|missing you|miss you|thinking of you|can't stop thinking|i love you|adore you|so in love`)
	flirtyPattern   = regexp.MustCompile(`😏|wink|flirt|tease|hey there|what's up|sup|hmu`)
	playfulPattern  = regexp.MustCompile(`haha|lol|hehe|😂|funny|joke`)
	confusedPattern = regexp.MustCompile(`\?$|\?{2,}|confused|don't know|what|why|help|need`)
)

// romanticGroups are independent signal groups; one match is enough.
var romanticGroups = []*regexp.Regexp{
	regexp.MustCompile(`love|crush|like you|missing you|miss you|thinking of you|can't stop thinking`),
	regexp.MustCompile(`what if|imagine|do you think|would you|i'm falling`),
	regexp.MustCompile(`😍|💕|❤️|💓|💗`),
	regexp.MustCompile(`beautiful|cute|handsome|amazing|perfect|attractive`),
	regexp.MustCompile(`feel the same|love me|care about you|mean to me|special to me`),
	regexp.MustCompile(`forever|always|future|together|relationship|dating`),
}

var (
	emojiPattern       = regexp.MustCompile(`[\x{00A9}\x{00AE}\x{203C}\x{2047}-\x{2049}\x{2122}\x{2139}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}\x{3030}\x{303D}\x{3297}\x{3299}\x{FE0F}\x{1F000}-\x{1F9FF}]`)
	capsRunPattern     = regexp.MustCompile(`[A-Z]{3,}`)
	punctuationPattern = regexp.MustCompile(`[!]{2,}|[?]{2,}`)
)

// Classify maps message text to an emotional state label.
// Categories are tested in priority order; the first match wins.
func Classify(text string) Label {
	lowered := strings.ToLower(text)

	switch {
	case sadPattern.MatchString(lowered):
		return LabelSad
	case angryPattern.MatchString(lowered):
		return LabelAngry
	case romanticPattern.MatchString(lowered):
		return LabelRomantic
	case flirtyPattern.MatchString(lowered):
		return LabelFlirty
	case playfulPattern.MatchString(lowered):
		return LabelPlayful
	case confusedPattern.MatchString(lowered):
		return LabelConfused
	default:
		return LabelNeutral
	}
}

// DetectRomanticSignal reports whether the message carries romantic interest.
// The groups are OR-ed: one matching group is enough.
func DetectRomanticSignal(text string) bool {
	lowered := strings.ToLower(text)
	for _, group := range romanticGroups {
		if group.MatchString(lowered) {
			return true
		}
	}
	return false
}

// ClassifyStyle derives messaging-style flags from one message.
// The flags are independent and not mutually exclusive.
func ClassifyStyle(text string) Style {
	wordCount := len(strings.Fields(text))
	return Style{
		Verbose:    wordCount > 20,
		Brief:      wordCount < 5,
		Expressive: emojiPattern.MatchString(text),
		Emphatic:   capsRunPattern.MatchString(text) || punctuationPattern.MatchString(text),
	}
}
