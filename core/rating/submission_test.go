package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavorsense/flavorsense/core"
)

func TestParseSubmission(t *testing.T) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		body    string
		want    Submission
		wantMsg string
	}{
		{name: "int", body: `{"item":"Idli","rating":5,"date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 5}},
		{name: "min", body: `{"item":"Idli","rating":1,"date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 1}},
		{name: "integral float", body: `{"item":"Idli","rating":4.0,"date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 4}},
		{name: "exponent", body: `{"item":"Idli","rating":3e0,"date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 3}},
		{name: "numeric string", body: `{"item":"Idli","rating":" 2 ","date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 2}},
		{name: "trimmed", body: `{"item":"  Idli ","rating":3,"date":" 2024-01-01 "}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 3}},
		{name: "not json", body: `rating=5`, wantMsg: "Invalid JSON"},
		{name: "empty body", body: ``, wantMsg: "Invalid JSON"},
		{name: "empty object", body: `{}`, wantMsg: "Invalid JSON"},
		{name: "array", body: `[1,2]`, wantMsg: "Invalid JSON"},
		{name: "null", body: `null`, wantMsg: "Invalid JSON"},
		{name: "missing item", body: `{"rating":5,"date":"2024-01-01"}`, wantMsg: "Missing item or date"},
		{name: "blank item", body: `{"item":"  ","rating":5,"date":"2024-01-01"}`, wantMsg: "Missing item or date"},
		{name: "missing date", body: `{"item":"Idli","rating":5}`, wantMsg: "Missing item or date"},
		{name: "non-string item", body: `{"item":7,"rating":5,"date":"2024-01-01"}`, wantMsg: "Missing item or date"},
		{name: "missing item wins over bad rating", body: `{"rating":9,"date":"2024-01-01"}`, wantMsg: "Missing item or date"},
		{name: "zero", body: `{"item":"Idli","rating":0,"date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "six", body: `{"item":"Idli","rating":6,"date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "abc", body: `{"item":"Idli","rating":"abc","date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "fraction truncated", body: `{"item":"Idli","rating":3.5,"date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 3}},
		{name: "fraction below max truncated", body: `{"item":"Idli","rating":5.9,"date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 5}},
		{name: "fraction above max", body: `{"item":"Idli","rating":6.5,"date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "fraction below min", body: `{"item":"Idli","rating":0.9,"date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "negative fraction", body: `{"item":"Idli","rating":-1.5,"date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "fraction string", body: `{"item":"Idli","rating":"3.5","date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "huge", body: `{"item":"Idli","rating":1e300,"date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "true", body: `{"item":"Idli","rating":true,"date":"2024-01-01"}`, want: Submission{Item: "Idli", Date: "2024-01-01", Rating: 1}},
		{name: "false", body: `{"item":"Idli","rating":false,"date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
		{name: "missing rating", body: `{"item":"Idli","date":"2024-01-01"}`, wantMsg: "Rating must be an integer between 1 and 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := ParseSubmission(validate, translator, []byte(tt.body))
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, sub)
				return
			}
			require.True(t, core.IsValidationError(err), "got %v", err)
			assert.Equal(t, tt.wantMsg, err.(*core.ValidationError).Message())
		})
	}
}
