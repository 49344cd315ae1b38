package model

// Insight is an article from the insights section of the site.
type Insight struct {
	Slug     string `json:"slug" yaml:"slug"`
	Category string `json:"category" yaml:"category"`
	Title    string `json:"title" yaml:"title"`
	Excerpt  string `json:"excerpt" yaml:"excerpt"`
	Date     string `json:"date" yaml:"date"`
	ReadTime string `json:"read_time" yaml:"read_time"`
	Body     string `json:"body,omitempty" yaml:"body"`
}

// Solution describes one of the investment solutions offered to advisers.
type Solution struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Features    []string `json:"features" yaml:"features"`
}
