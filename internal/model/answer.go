package model

import (
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Answer is a respondent's selection for one match question. It is either a
// SingleAnswer or a MultipleAnswer.
type Answer interface {
	// Values returns the selected option values.
	Values() []string
	isAnswer()
}

// SingleAnswer is the selection for a single-choice question.
type SingleAnswer string

// MultipleAnswer is the selection set for a multiple-choice question.
type MultipleAnswer []string

func (a SingleAnswer) Values() []string { return []string{string(a)} }
func (SingleAnswer) isAnswer()          {}

func (a MultipleAnswer) Values() []string { return []string(a) }
func (MultipleAnswer) isAnswer()          {}

// AnswerSet maps a match question ID to the respondent's answer.
type AnswerSet map[string]Answer

// UnmarshalJSON decodes strings as SingleAnswer and arrays as MultipleAnswer.
func (s *AnswerSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: decode answer set")
	}
	out := make(AnswerSet, len(raw))
	for id, msg := range raw {
		var single string
		if err := json.Unmarshal(msg, &single); err == nil {
			out[id] = SingleAnswer(single)
			continue
		}
		var multi []string
		if err := json.Unmarshal(msg, &multi); err == nil {
			out[id] = MultipleAnswer(multi)
			continue
		}
		return eris.Errorf("model: answer %q must be a string or an array of strings", id)
	}
	*s = out
	return nil
}

// MarshalJSON encodes answers in the same shape UnmarshalJSON accepts.
func (s AnswerSet) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(s))
	for id, a := range s {
		switch v := a.(type) {
		case SingleAnswer:
			raw[id] = string(v)
		case MultipleAnswer:
			raw[id] = []string(v)
		}
	}
	return json.Marshal(raw)
}

// UnmarshalYAML decodes scalars as SingleAnswer and sequences as MultipleAnswer.
func (s *AnswerSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return eris.New("model: answer set must be a mapping")
	}
	out := make(AnswerSet, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		id := node.Content[i].Value
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			out[id] = SingleAnswer(val.Value)
		case yaml.SequenceNode:
			var multi []string
			if err := val.Decode(&multi); err != nil {
				return eris.Wrapf(err, "model: decode answer %q", id)
			}
			out[id] = MultipleAnswer(multi)
		default:
			return eris.Errorf("model: answer %q must be a scalar or a sequence", id)
		}
	}
	*s = out
	return nil
}

// QuestionIDs returns the answered question IDs in sorted order.
func (s AnswerSet) QuestionIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
