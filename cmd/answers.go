package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sequoia-invest/adviser-tools/internal/model"
)

// answerFile is the YAML shape accepted by --file on risk and match.
type answerFile struct {
	ClientRef string            `yaml:"client_ref"`
	Risk      model.RiskAnswers `yaml:"risk"`
	Match     model.AnswerSet   `yaml:"match"`
}

func readAnswerFile(path string) (*answerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read answers %s", path)
	}
	var f answerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "parse answers %s", path)
	}
	return &f, nil
}

// splitPairs splits "k=v,k=v" into ordered key/value pairs.
func splitPairs(s string) ([][2]string, error) {
	var pairs [][2]string
	for _, part := range splitAndTrim(s) {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, eris.Errorf("answer %q must be key=value", part)
		}
		pairs = append(pairs, [2]string{k, v})
	}
	if len(pairs) == 0 {
		return nil, eris.New("no answers given")
	}
	return pairs, nil
}

// parseRiskAnswers parses "1=4,2=5" into question ID to option score.
func parseRiskAnswers(s string) (model.RiskAnswers, error) {
	pairs, err := splitPairs(s)
	if err != nil {
		return nil, err
	}
	answers := make(model.RiskAnswers, len(pairs))
	for _, p := range pairs {
		id, err := strconv.Atoi(p[0])
		if err != nil {
			return nil, eris.Errorf("risk question id %q is not a number", p[0])
		}
		score, err := strconv.Atoi(p[1])
		if err != nil {
			return nil, eris.Errorf("risk answer %q for question %d is not a number", p[1], id)
		}
		if _, dup := answers[id]; dup {
			return nil, eris.Errorf("risk question %d answered twice", id)
		}
		answers[id] = score
	}
	return answers, nil
}

// parseMatchAnswers parses "objective=capital-growth,esg=a|b". Values for
// multiple-choice questions, or values containing "|", become multiple
// answers; the scorer rejects a multiple answer to a single-choice question.
func parseMatchAnswers(s string, questions []model.MatchQuestion) (model.AnswerSet, error) {
	pairs, err := splitPairs(s)
	if err != nil {
		return nil, err
	}
	modes := make(map[string]model.AnswerMode, len(questions))
	for _, q := range questions {
		modes[q.ID] = q.Mode
	}

	answers := make(model.AnswerSet, len(pairs))
	for _, p := range pairs {
		if _, dup := answers[p[0]]; dup {
			return nil, eris.Errorf("match question %q answered twice", p[0])
		}
		values := strings.Split(p[1], "|")
		if modes[p[0]] == model.ModeMultiple || len(values) > 1 {
			answers[p[0]] = model.MultipleAnswer(values)
			continue
		}
		answers[p[0]] = model.SingleAnswer(p[1])
	}
	return answers, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
