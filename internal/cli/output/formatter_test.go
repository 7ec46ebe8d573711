package output

import (
	"bytes"
	"strings"
	"testing"
)

type snapshotRow struct {
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	Size      int64    `json:"size" table:"bytes"`
	Protected bool     `json:"protected"`
	Folders   []string `json:"folders" table:"wide"`
	Secret    string   `json:"secret" table:"-"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("json should give JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("yaml should give YAMLFormatter")
	}
	tf, ok := NewFormatter(FormatTable, true).(*TableFormatter)
	if !ok || !tf.Wide {
		t.Errorf("table formatter = %#v", tf)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, snapshotRow{Slug: "abcd1234", Size: 10}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"slug": "abcd1234"`) {
		t.Errorf("output = %s", out)
	}
}

func TestYAMLFormatter_UsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	data := []snapshotRow{{Slug: "abcd1234", Name: "Nightly", Size: 3 << 20, Folders: []string{"share"}}}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"slug: abcd1234", "name: Nightly", "size: 3145728", "folders:", "- share"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestYAMLFormatter_Map(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, map[string]any{"held": true}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "held: true" {
		t.Errorf("output = %q", buf.String())
	}
}
