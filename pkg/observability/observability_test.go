package observability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
)

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name      string
		field     observability.Field
		wantKey   string
		wantValue any
	}{
		{
			name:      "String field",
			field:     observability.String("location", "https://www.example.com"),
			wantKey:   "location",
			wantValue: "https://www.example.com",
		},
		{
			name:      "Int field",
			field:     observability.Int("status", 200),
			wantKey:   "status",
			wantValue: 200,
		},
		{
			name:      "Int64 field",
			field:     observability.Int64("bytes", 1000000),
			wantKey:   "bytes",
			wantValue: int64(1000000),
		},
		{
			name:      "Float64 field",
			field:     observability.Float64("execution_time", 0.3516),
			wantKey:   "execution_time",
			wantValue: 0.3516,
		},
		{
			name:      "Bool field",
			field:     observability.Bool("one_way", false),
			wantKey:   "one_way",
			wantValue: false,
		},
		{
			name:      "Duration field",
			field:     observability.Duration("elapsed", 2*time.Second),
			wantKey:   "elapsed",
			wantValue: 2 * time.Second,
		},
		{
			name:      "Any field",
			field:     observability.Any("version", 1),
			wantKey:   "version",
			wantValue: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.wantKey {
				t.Errorf("got key %q, want %q", tt.field.Key, tt.wantKey)
			}

			if tt.field.Value != tt.wantValue {
				t.Errorf("got value %v, want %v", tt.field.Value, tt.wantValue)
			}
		})
	}
}

func TestErrorField(t *testing.T) {
	field := observability.Error(errors.New("transport failed"))

	if field.Key != "error" {
		t.Errorf("got key %q, want %q", field.Key, "error")
	}

	value, ok := field.Value.(error)
	if !ok {
		t.Fatalf("field.Value is not an error, got %T", field.Value)
	}

	if value.Error() != "transport failed" {
		t.Errorf("got error %q, want %q", value.Error(), "transport failed")
	}
}
