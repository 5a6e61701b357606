package rating

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/flavorsense/flavorsense/core"
)

var (
	invalidJSONText = "Invalid JSON"

	missingItemTag  = "itemdate"
	missingItemText = "Missing item or date"

	ratingRangeTag  = "ratingrange"
	ratingRangeText = "Rating must be an integer between 1 and 5"
)

// Submission is a rating posted by a student.
type Submission struct {
	Item   string `json:"item"`
	Date   string `json:"date"`
	Rating int    `json:"rating"`
}

// InitValidators registers the rating validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(submissionStructValidation, Submission{})
	core.RegisterCustomTranslation(validate, translator, missingItemTag, missingItemText)
	core.RegisterCustomTranslation(validate, translator, ratingRangeTag, ratingRangeText)
}

// ParseSubmission decodes and validates a JSON submission body.
// The body must be a non-empty JSON object. item and date are trimmed. rating may be a JSON
// number (truncated toward zero), a boolean or a string holding a base-10 integer.
func ParseSubmission(validate *validator.Validate, translator ut.Translator, body []byte) (Submission, error) {
	var data map[string]interface{}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil || len(data) == 0 {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "body", Error: invalidJSONText})
	}

	sub := Submission{
		Item:   stringField(data, "item"),
		Date:   stringField(data, "date"),
		Rating: coerceRating(data["rating"]),
	}
	if err := core.TranslateErrors(validate.Struct(sub), translator); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// submissionStructValidation reports at most one error: item/date first, then the rating.
func submissionStructValidation(sl validator.StructLevel) {
	sub := sl.Current().Interface().(Submission)
	switch {
	case sub.Item == "":
		sl.ReportError(sub.Item, "item", "Item", missingItemTag, "")
	case sub.Date == "":
		sl.ReportError(sub.Date, "date", "Date", missingItemTag, "")
	case sub.Rating < MinRating || sub.Rating > MaxRating:
		sl.ReportError(sub.Rating, "rating", "Rating", ratingRangeTag, "")
	}
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return strings.TrimSpace(s)
}

// coerceRating converts a decoded JSON value to an integer rating: numbers are truncated
// toward zero, booleans count as 1 and 0, strings must hold a base-10 integer.
// Anything else returns 0 (out of range).
func coerceRating(v interface{}) int {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return clamp(float64(n))
		}
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return clamp(math.Trunc(f))
	case bool:
		if val {
			return clamp(1)
		}
		return 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return clamp(float64(n))
	default:
		return 0
	}
}

// clamp maps any value outside [MinRating, MaxRating] to 0 so it cannot overflow int.
func clamp(f float64) int {
	if f < MinRating || f > MaxRating {
		return 0
	}
	return int(f)
}
