package checksum

import (
	"strings"
	"testing"
)

func TestSHA256Calculator_CalculateRaw(t *testing.T) {
	calc := New()

	if got := calc.CalculateRaw(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("CalculateRaw(empty) = %s", got)
	}

	a := calc.CalculateRaw([]byte("<transformation/>"))
	b := calc.CalculateRaw([]byte("<transformation />"))
	if len(a) != 64 {
		t.Errorf("CalculateRaw() returned hash of length %d, expected 64", len(a))
	}
	if a == b {
		t.Error("raw checksum must see every byte")
	}
}

func TestSHA256Calculator_CalculateNormalized(t *testing.T) {
	calc := New()

	tests := []struct {
		name      string
		a, b      string
		wantEqual bool
	}{
		{
			name:      "Indentation is insignificant",
			a:         "<job>\n  <name>nightly</name>\n</job>\n",
			b:         "<job><name>nightly</name></job>",
			wantEqual: true,
		},
		{
			name:      "Comments are ignored",
			a:         "<job><!-- owner: etl team --><name>nightly</name></job>",
			b:         "<job><name>nightly</name></job>",
			wantEqual: true,
		},
		{
			name:      "Whitespace runs in text collapse",
			a:         "<step><name>Text  file\tinput</name></step>",
			b:         "<step><name>Text file input</name></step>",
			wantEqual: true,
		},
		{
			name:      "Case is significant",
			a:         "<hop><enabled>Y</enabled></hop>",
			b:         "<hop><enabled>y</enabled></hop>",
			wantEqual: false,
		},
		{
			name:      "Comment markers inside CDATA are content",
			a:         "<sql><![CDATA[<!-- keep -->]]></sql>",
			b:         "<sql><![CDATA[]]></sql>",
			wantEqual: false,
		},
		{
			name:      "Text changes are detected",
			a:         "<name>a</name>",
			b:         "<name>b</name>",
			wantEqual: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := calc.CalculateNormalized([]byte(tt.a))
			b := calc.CalculateNormalized([]byte(tt.b))
			if (a == b) != tt.wantEqual {
				t.Errorf("CalculateNormalized equality = %v, want %v", a == b, tt.wantEqual)
			}
		})
	}
}

func TestSHA256Calculator_UnterminatedComment(t *testing.T) {
	got := New().normalize("<job><name>x</name><!-- dangling")
	if got != "<job><name>x</name>" {
		t.Errorf("normalize() = %q", got)
	}
}

func BenchmarkCalculateNormalized(b *testing.B) {
	calculator := New()
	content := []byte(strings.Repeat("<step>\n  <name>Dummy</name> <!-- c -->\n</step>\n", 200))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calculator.CalculateNormalized(content)
	}
}
