package otel

import (
	"errors"
	"testing"
	"time"

	"github.com/JailtonJunior94/spark-go/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
)

func TestConvertFieldToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		field observability.Field
		want  attribute.KeyValue
	}{
		{
			name:  "string value",
			field: observability.String("soap.domain", "www.example.com"),
			want:  attribute.String("soap.domain", "www.example.com"),
		},
		{
			name:  "int value",
			field: observability.Int("soap.version", 1),
			want:  attribute.Int("soap.version", 1),
		},
		{
			name:  "int64 value",
			field: observability.Int64("bytes", 9223372036854775807),
			want:  attribute.Int64("bytes", 9223372036854775807),
		},
		{
			name:  "float64 value",
			field: observability.Float64("execution_time", 0.3516),
			want:  attribute.Float64("execution_time", 0.3516),
		},
		{
			name:  "bool value",
			field: observability.Bool("soap.one_way", true),
			want:  attribute.Bool("soap.one_way", true),
		},
		{
			name:  "duration value in milliseconds",
			field: observability.Duration("elapsed", 1500*time.Millisecond),
			want:  attribute.Int64("elapsed", 1500),
		},
		{
			name:  "error value",
			field: observability.Error(errors.New("transport failed")),
			want:  attribute.String("error", "transport failed"),
		},
		{
			name:  "custom type falls back to string",
			field: observability.Any("custom", struct{ Name string }{Name: "test"}),
			want:  attribute.String("custom", "{test}"),
		},
		{
			name:  "nil value",
			field: observability.Any("nil_value", nil),
			want:  attribute.String("nil_value", "<nil>"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertFieldToAttribute(tt.field)

			if got.Key != tt.want.Key {
				t.Errorf("got key %v, want %v", got.Key, tt.want.Key)
			}

			if got.Value.AsInterface() != tt.want.Value.AsInterface() {
				t.Errorf("got value %v, want %v", got.Value.AsInterface(), tt.want.Value.AsInterface())
			}
		})
	}
}

func TestConvertFieldsToAttributes(t *testing.T) {
	t.Run("empty slice returns nil", func(t *testing.T) {
		if result := convertFieldsToAttributes([]observability.Field{}); result != nil {
			t.Errorf("expected nil for empty slice, got %v", result)
		}
	})

	t.Run("nil slice returns nil", func(t *testing.T) {
		if result := convertFieldsToAttributes(nil); result != nil {
			t.Errorf("expected nil for nil slice, got %v", result)
		}
	})

	t.Run("order is preserved", func(t *testing.T) {
		fields := []observability.Field{
			observability.String("soap.domain", "example.com"),
			observability.Int("status", 200),
			observability.Bool("soap.one_way", false),
		}

		result := convertFieldsToAttributes(fields)
		if len(result) != 3 {
			t.Fatalf("expected 3 attributes, got %d", len(result))
		}

		if result[0].Key != "soap.domain" || result[0].Value.AsString() != "example.com" {
			t.Errorf("first attribute incorrect: key=%v, value=%v", result[0].Key, result[0].Value.AsInterface())
		}

		if result[1].Key != "status" || result[1].Value.AsInt64() != 200 {
			t.Errorf("second attribute incorrect: key=%v, value=%v", result[1].Key, result[1].Value.AsInterface())
		}

		if result[2].Key != "soap.one_way" || result[2].Value.AsBool() {
			t.Errorf("third attribute incorrect: key=%v, value=%v", result[2].Key, result[2].Value.AsInterface())
		}
	})
}

func BenchmarkConvertFieldsToAttributes(b *testing.B) {
	fields := []observability.Field{
		observability.String("soap.domain", "example.com"),
		observability.Int("status", 200),
		observability.Float64("execution_time", 1.23),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = convertFieldsToAttributes(fields)
	}
}
