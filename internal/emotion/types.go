package emotion

// Label is a detected emotional state.
type Label string

const (
	LabelSad      Label = "sad"
	LabelAngry    Label = "angry"
	LabelRomantic Label = "romantic"
	LabelFlirty   Label = "flirty"
	LabelPlayful  Label = "playful"
	LabelConfused Label = "confused"
	LabelNeutral  Label = "neutral"
)

// Style captures how the user writes, independent boolean flags.
type Style struct {
	Verbose    bool `json:"verbose"`
	Brief      bool `json:"brief"`
	Expressive bool `json:"expressive"`
	Emphatic   bool `json:"emphatic"`
}
