package csv

import (
	"reflect"
	"testing"
)

func TestSplitRows(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "unix line endings",
			input:    "a,b\nc,d\n",
			expected: []string{"a,b", "c,d"},
		},
		{
			name:     "windows line endings",
			input:    "a,b\r\nc,d\r\n",
			expected: []string{"a,b", "c,d"},
		},
		{
			name:     "classic mac line endings",
			input:    "a,b\rc,d",
			expected: []string{"a,b", "c,d"},
		},
		{
			name:     "mixed line endings",
			input:    "a\nb\r\nc\rd",
			expected: []string{"a", "b", "c", "d"},
		},
		{
			name:     "newline inside quoted field stays in row",
			input:    "a,\"line one\nline two\",b\nnext",
			expected: []string{"a,\"line one\nline two\",b", "next"},
		},
		{
			name:     "crlf inside quoted field stays in row",
			input:    "\"x\r\ny\"\nz",
			expected: []string{"\"x\r\ny\"", "z"},
		},
		{
			name:     "no trailing newline",
			input:    "a,b",
			expected: []string{"a,b"},
		},
		{
			name:     "trailing whitespace after final terminator dropped",
			input:    "a,b\n   ",
			expected: []string{"a,b"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only input",
			input:    "  \n\t \r\n ",
			expected: nil,
		},
		{
			name:     "blank row between data rows is preserved",
			input:    "a\n\nb",
			expected: []string{"a", "", "b"},
		},
		{
			name:     "utf8 bom stripped",
			input:    "\uFEFFa,b\nc,d",
			expected: []string{"a,b", "c,d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitRows(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitRows(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "plain fields",
			input:    "a,b,c",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "quoted field with comma",
			input:    `a,"b,c",d`,
			expected: []string{"a", "b,c", "d"},
		},
		{
			name:     "doubled quote inside quoted field",
			input:    `"say ""hi""",x`,
			expected: []string{`say "hi"`, "x"},
		},
		{
			name:     "quoted field with embedded newline",
			input:    "\"one\ntwo\",three",
			expected: []string{"one\ntwo", "three"},
		},
		{
			name:     "empty fields",
			input:    "a,,c,",
			expected: []string{"a", "", "c", ""},
		},
		{
			name:     "single empty field",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "unterminated quote accumulates rest of row",
			input:    `a,"b,c`,
			expected: []string{"a", "b,c"},
		},
		{
			name:     "quote in middle of bare field",
			input:    `ab"cd"ef,g`,
			expected: []string{"abcdef", "g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitFields(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitFields(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}
