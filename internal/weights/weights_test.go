package weights

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleVector() Vector {
	var v Vector
	for i := range v {
		v[i] = float64(i)*0.25 - 2
	}
	return v
}

func TestFormatParseRoundTrip(t *testing.T) {
	v := sampleVector()
	got, err := Parse(v.Format())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != v {
		t.Fatalf("round trip changed the vector:\nwant %v\ngot  %v", v, got)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	v := sampleVector()
	padded := "\n" + strings.ReplaceAll(v.Format(), "\n", "\n\n") + "   \n"
	got, err := Parse(padded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != v {
		t.Fatal("blank lines changed the parsed vector")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"too few values", "1\n2\n3\n", "expected 16 values, found 3"},
		{"too many values", strings.Repeat("0.5\n", Count+1), "expected 16 values, found 17"},
		{"bad number", "1\nnot-a-number\n", "weights line 2"},
		{"empty input", "", "expected 16 values, found 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %q", tc.want, err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v := sampleVector()
	path := filepath.Join(t.TempDir(), "weights.txt")
	if err := v.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != v {
		t.Fatal("save/load changed the vector")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}

func TestLoadNamesFileInParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.txt")
	if err := os.WriteFile(path, []byte("1\n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "short.txt") {
		t.Fatalf("expected the error to name the file, got %v", err)
	}
}

func TestUniformStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		v := Uniform(rng, -1, 1)
		for i, w := range v {
			if w < -1 || w > 1 {
				t.Fatalf("weight %d out of [-1,1]: %g", i, w)
			}
		}
	}

	a := Uniform(rand.New(rand.NewSource(3)), -1, 1)
	b := Uniform(rand.New(rand.NewSource(3)), -1, 1)
	if a != b {
		t.Fatal("identical seeds produced different vectors")
	}
}

func TestSliceCopies(t *testing.T) {
	v := sampleVector()
	s := v.Slice()
	if len(s) != Count {
		t.Fatalf("expected %d entries, got %d", Count, len(s))
	}
	s[0] = 999
	if v[0] == 999 {
		t.Fatal("slice aliases the vector")
	}
}
