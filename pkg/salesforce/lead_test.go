package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements Client for testing.
type mockClient struct {
	queryFn     func(ctx context.Context, soql string, out any) error
	insertOneFn func(ctx context.Context, sObjectName string, record map[string]any) (string, error)
	updateOneFn func(ctx context.Context, sObjectName string, id string, fields map[string]any) error
}

func (m *mockClient) Query(ctx context.Context, soql string, out any) error {
	if m.queryFn != nil {
		return m.queryFn(ctx, soql, out)
	}
	return nil
}

func (m *mockClient) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	if m.insertOneFn != nil {
		return m.insertOneFn(ctx, sObjectName, record)
	}
	return "00Q000000000001", nil
}

func (m *mockClient) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	if m.updateOneFn != nil {
		return m.updateOneFn(ctx, sObjectName, id, fields)
	}
	return nil
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{"", "", ""},
		{"   ", "", ""},
		{"Cher", "", "Cher"},
		{"Alex Morgan", "Alex", "Morgan"},
		{" Mary  Ann  Evans ", "Mary Ann", "Evans"},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestCreateLead(t *testing.T) {
	var gotObject string
	var gotRecord map[string]any
	c := &mockClient{
		insertOneFn: func(_ context.Context, sObjectName string, record map[string]any) (string, error) {
			gotObject = sObjectName
			gotRecord = record
			return "00Qabc", nil
		},
	}

	id, err := CreateLead(context.Background(), c, Lead{
		FirstName:   "Alex",
		LastName:    "Morgan",
		Email:       "alex@example.co.uk",
		LeadSource:  "Website",
		Description: "[partnership] hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "00Qabc", id)
	assert.Equal(t, "Lead", gotObject)
	assert.Equal(t, map[string]any{
		"FirstName":   "Alex",
		"LastName":    "Morgan",
		"Email":       "alex@example.co.uk",
		"Company":     DefaultCompany,
		"LeadSource":  "Website",
		"Description": "[partnership] hello",
	}, gotRecord)
}

func TestCreateLead_Validation(t *testing.T) {
	c := &mockClient{}
	_, err := CreateLead(context.Background(), c, Lead{Email: "a@b.com"})
	assert.ErrorContains(t, err, "LastName is required")

	_, err = CreateLead(context.Background(), c, Lead{LastName: "X"})
	assert.ErrorContains(t, err, "Email is required")
}

func TestCreateLead_InsertError(t *testing.T) {
	c := &mockClient{
		insertOneFn: func(context.Context, string, map[string]any) (string, error) {
			return "", errors.New("boom")
		},
	}
	_, err := CreateLead(context.Background(), c, Lead{LastName: "X", Email: "x@y.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf: create lead x@y.com")
}

func TestFindLeadByEmail(t *testing.T) {
	var gotSOQL string
	c := &mockClient{
		queryFn: func(_ context.Context, soql string, out any) error {
			gotSOQL = soql
			leads := out.(*[]Lead)
			*leads = []Lead{{ID: "00Qfound"}}
			return nil
		},
	}

	lead, err := FindLeadByEmail(context.Background(), c, "o'brien@example.com")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "00Qfound", lead.ID)
	assert.Contains(t, gotSOQL, `Email = 'o\'brien@example.com'`)
	assert.Contains(t, gotSOQL, "Description")
}

func TestFindLeadByEmail_None(t *testing.T) {
	lead, err := FindLeadByEmail(context.Background(), &mockClient{}, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestFindLeadByEmail_Error(t *testing.T) {
	c := &mockClient{
		queryFn: func(context.Context, string, any) error { return errors.New("down") },
	}
	_, err := FindLeadByEmail(context.Background(), c, "a@b.com")
	assert.ErrorContains(t, err, "find lead by email")
}

func TestAppendLeadDescription(t *testing.T) {
	var gotID string
	var gotFields map[string]any
	c := &mockClient{
		updateOneFn: func(_ context.Context, _ string, id string, fields map[string]any) error {
			gotID = id
			gotFields = fields
			return nil
		},
	}
	ctx := context.Background()

	require.NoError(t, AppendLeadDescription(ctx, c, Lead{ID: "00Q1", Description: "first"}, "again"))
	assert.Equal(t, "00Q1", gotID)
	assert.Equal(t, "first\n\nagain", gotFields["Description"])

	require.NoError(t, AppendLeadDescription(ctx, c, Lead{ID: "00Q2"}, "only"))
	assert.Equal(t, "only", gotFields["Description"])

	assert.Error(t, AppendLeadDescription(ctx, c, Lead{}, "x"))
}

func TestEscapeSoql(t *testing.T) {
	assert.Equal(t, `it\'s`, escapeSoql("it's"))
	assert.Equal(t, `a\\b`, escapeSoql(`a\b`))
}
