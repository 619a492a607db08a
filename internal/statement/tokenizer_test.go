package statement

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(nil)

	tests := []struct {
		name string
		raw  string
		want [][]string
	}{
		{
			name: "simple rows",
			raw:  "01/03/2024;LIDL PARIS;45,20;\n01/03/2024;SALAIRE;;1500,00\n",
			want: [][]string{
				{"01/03/2024", "LIDL PARIS", "45,20", ""},
				{"01/03/2024", "SALAIRE", "", "1500,00"},
			},
		},
		{
			name: "missing trailing newline still flushes last row",
			raw:  "01/03/2024;LIDL PARIS;45,20;",
			want: [][]string{{"01/03/2024", "LIDL PARIS", "45,20", ""}},
		},
		{
			name: "quoted field with delimiter",
			raw:  "01/03/2024;\"AMAZON;MARKETPLACE\";10,00;\n",
			want: [][]string{{"01/03/2024", "AMAZON;MARKETPLACE", "10,00", ""}},
		},
		{
			name: "quoted multiline field stays one field",
			raw:  "01/03/2024;\"LOYER\nAPPARTEMENT\";800,00;\n",
			want: [][]string{{"01/03/2024", "LOYER\nAPPARTEMENT", "800,00", ""}},
		},
		{
			name: "escaped quote inside quotes",
			raw:  "01/03/2024;\"CHEZ \"\"MARCEL\"\"\";12,00;\n",
			want: [][]string{{"01/03/2024", `CHEZ "MARCEL"`, "12,00", ""}},
		},
		{
			name: "all-empty rows are dropped",
			raw:  "01/03/2024;LIDL;45,20;\n;;;\n\n01/04/2024;CARREFOUR;30,00;\n",
			want: [][]string{
				{"01/03/2024", "LIDL", "45,20", ""},
				{"01/04/2024", "CARREFOUR", "30,00", ""},
			},
		},
		{
			name: "CRLF and bare CR are normalized",
			raw:  "01/03/2024;LIDL;45,20;\r\n01/04/2024;CARREFOUR;30,00;\r",
			want: [][]string{
				{"01/03/2024", "LIDL", "45,20", ""},
				{"01/04/2024", "CARREFOUR", "30,00", ""},
			},
		},
		{
			name: "fields are trimmed",
			raw:  " 01/03/2024 ; LIDL PARIS ;45,20;\n",
			want: [][]string{{"01/03/2024", "LIDL PARIS", "45,20", ""}},
		},
		{
			name: "unmatched quote degrades without error",
			raw:  "01/03/2024;\"LIDL;45,20\n01/04/2024;OK;1,00;\n",
			want: [][]string{{"01/03/2024", "LIDL;45,20\n01/04/2024;OK;1,00;"}},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTokenize_CustomDelimiter(t *testing.T) {
	tok := NewTokenizer(&TokenizerConfig{Delimiter: ',', Quote: '"'})
	got := tok.Tokenize("a,b,c\n")
	want := [][]string{{"a", "b", "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %#v, want %#v", got, want)
	}
}
