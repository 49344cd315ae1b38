package projection

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-invest/adviser-tools/internal/config"
	"github.com/sequoia-invest/adviser-tools/internal/model"
)

func TestProjectDFM_Advisory(t *testing.T) {
	cfg := config.DefaultProjectionConfig()

	res, err := ProjectDFM(DefaultDFMInput(cfg), cfg)
	require.NoError(t, err)

	assert.Equal(t, 543_750.0, res.Points[1].A)
	assert.Equal(t, 549_250.0, res.Points[1].B)
	assert.Equal(t, 1_043_904.0, res.FinalA)
	assert.Equal(t, 1_144_599.0, res.FinalB)
	assert.Equal(t, 100_695.0, res.ValueAdded)
	assert.InDelta(t, 4.75, res.CurrentNetReturn, 1e-9)
	assert.InDelta(t, 5.85, res.DFMNetReturn, 1e-9)
	assert.Equal(t, 400.0, res.CurrentTimeSpent)
	assert.Equal(t, 150.0, res.DFMTimeSpent)
	assert.Equal(t, 250.0, res.TimeSaved)
	assert.Equal(t, cfg.Advisory, res.Current)
	assert.Equal(t, cfg.DFM, res.DFM)
}

func TestProjectDFM_DIY(t *testing.T) {
	cfg := config.DefaultProjectionConfig()
	in := DefaultDFMInput(cfg)
	in.CurrentApproach = "diy"
	in.ClientCount = 20

	res, err := ProjectDFM(in, cfg)
	require.NoError(t, err)

	assert.Equal(t, 996_840.0, res.FinalA)
	assert.Equal(t, 1_144_599.0, res.FinalB)
	assert.Equal(t, 147_759.0, res.ValueAdded)
	assert.InDelta(t, 14.8, res.PercentageGain, 1e-9)
	assert.Equal(t, 180.0, res.TimeSaved)
}

func TestProjectDFM_UnknownApproach(t *testing.T) {
	cfg := config.DefaultProjectionConfig()

	for _, approach := range []string{"", "dfm", "robo"} {
		in := DefaultDFMInput(cfg)
		in.CurrentApproach = approach
		_, err := ProjectDFM(in, cfg)
		assert.True(t, errors.Is(err, ErrUnknownApproach), approach)
	}
}

func TestProjectDFM_JSONFlattensSeries(t *testing.T) {
	cfg := config.DefaultProjectionConfig()
	res, err := ProjectDFM(DefaultDFMInput(cfg), cfg)
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "points")
	assert.Contains(t, decoded, "final_b")
	assert.Contains(t, decoded, "time_saved")
	assert.Equal(t, 250.0, decoded["time_saved"])
}

func TestTimeSaved(t *testing.T) {
	tests := []struct {
		clients        int
		hoursA, hoursB float64
		want           float64
	}{
		{50, 8, 3, 250},
		{50, 12, 3, 450},
		{0, 8, 3, 0},
		{10, 3, 8, -50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeSaved(tt.clients, tt.hoursA, tt.hoursB))
	}
}

func TestDFMAssessment(t *testing.T) {
	in := DefaultDFMInput(config.DefaultProjectionConfig())
	res, err := ProjectDFM(in, config.DefaultProjectionConfig())
	require.NoError(t, err)

	a, err := DFMAssessment("client-1", in, res)
	require.NoError(t, err)
	assert.Equal(t, model.KindProjection, a.Kind)
	assert.Equal(t, res.Summary(), a.Summary)
	assert.Contains(t, string(a.Input), `"current_approach":"advisory"`)
	assert.Contains(t, string(a.Result), `"time_saved":250`)
}

func TestProjectionAssessment(t *testing.T) {
	in := Input{Principal: 1000, Years: 1, A: Scenario{Rate: 5}, B: Scenario{Rate: 5}}
	a, err := Assessment("", in, Project(in))
	require.NoError(t, err)
	assert.Equal(t, model.KindProjection, a.Kind)
	assert.Contains(t, string(a.Result), `"final_a":1050`)
}
