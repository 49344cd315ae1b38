package model

// RiskCategory groups risk questions for sub-scoring.
type RiskCategory string

const (
	RiskCapacity  RiskCategory = "capacity"
	RiskTolerance RiskCategory = "tolerance"
	RiskGoals     RiskCategory = "goals"
)

// Valid reports whether c is one of the known categories.
func (c RiskCategory) Valid() bool {
	switch c {
	case RiskCapacity, RiskTolerance, RiskGoals:
		return true
	}
	return false
}

// RiskOption is one selectable answer to a risk question.
type RiskOption struct {
	Text  string `json:"text" yaml:"text"`
	Score int    `json:"score" yaml:"score"`
}

// RiskQuestion is a question from the risk-profiling questionnaire.
type RiskQuestion struct {
	ID       int          `json:"id" yaml:"id"`
	Text     string       `json:"text" yaml:"text"`
	Category RiskCategory `json:"category" yaml:"category"`
	Options  []RiskOption `json:"options" yaml:"options"`
}

// OffersScore reports whether any option on the question carries score.
func (q RiskQuestion) OffersScore(score int) bool {
	for _, o := range q.Options {
		if o.Score == score {
			return true
		}
	}
	return false
}

// RiskAnswers maps a risk question ID to the score of the selected option.
type RiskAnswers map[int]int

// Allocation is a target allocation for a risk profile, in percent.
type Allocation struct {
	Equities     int `json:"equities" yaml:"equities"`
	Bonds        int `json:"bonds" yaml:"bonds"`
	Alternatives int `json:"alternatives" yaml:"alternatives"`
	Cash         int `json:"cash" yaml:"cash"`
}

// Total returns the sum of all components.
func (a Allocation) Total() int {
	return a.Equities + a.Bonds + a.Alternatives + a.Cash
}

// RiskProfile is one of the five named tiers selected by the risk scorer.
type RiskProfile struct {
	Name        string     `json:"name" yaml:"name"`
	Level       int        `json:"level" yaml:"level"`
	Description string     `json:"description" yaml:"description"`
	Allocation  Allocation `json:"allocation" yaml:"allocation"`
	SuitableFor []string   `json:"suitable_for" yaml:"suitable_for"`
}

// AnswerMode says whether a match question takes one or several values.
type AnswerMode string

const (
	ModeSingle   AnswerMode = "single"
	ModeMultiple AnswerMode = "multiple"
)

// ScoreVector is the per-category weight carried by a match option.
type ScoreVector struct {
	Growth    int `json:"growth" yaml:"growth"`
	Income    int `json:"income" yaml:"income"`
	Defensive int `json:"defensive" yaml:"defensive"`
	ESG       int `json:"esg" yaml:"esg"`
}

// Add returns the component-wise sum of v and o.
func (v ScoreVector) Add(o ScoreVector) ScoreVector {
	return ScoreVector{
		Growth:    v.Growth + o.Growth,
		Income:    v.Income + o.Income,
		Defensive: v.Defensive + o.Defensive,
		ESG:       v.ESG + o.ESG,
	}
}

// MatchOption is one selectable answer to a match question.
type MatchOption struct {
	Value       string      `json:"value" yaml:"value"`
	Label       string      `json:"label" yaml:"label"`
	Description string      `json:"description,omitempty" yaml:"description"`
	Score       ScoreVector `json:"score" yaml:"score"`
}

// MatchQuestion is a question from the fund-matching questionnaire.
type MatchQuestion struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Mode        AnswerMode    `json:"mode" yaml:"mode"`
	Options     []MatchOption `json:"options" yaml:"options"`
}

// Option returns the option with the given value.
func (q MatchQuestion) Option(value string) (MatchOption, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return MatchOption{}, false
}
