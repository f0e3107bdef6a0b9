package main

import (
	"testing"
)

func TestParseFloats(t *testing.T) {
	vs, err := parseFloats("0.3, 0.4,0.5")
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 3 || vs[0] != 0.3 || vs[1] != 0.4 || vs[2] != 0.5 {
		t.Error("unexpected values:", vs)
	}
	if _, err := parseFloats("0.3,x"); err == nil {
		t.Error("expected an error for a non-numeric field")
	}
}

func TestParseTriple(t *testing.T) {
	i, j, v, err := parseTriple("1:3:0.45", 3)
	if err != nil {
		t.Fatal(err)
	}
	if i != 0 || j != 2 || v != 0.45 {
		t.Errorf("got (%d, %d, %v)", i, j, v)
	}

	for _, bad := range []string{"1:2", "0:2:0.1", "1:4:0.1", "a:2:0.1"} {
		if _, _, _, err := parseTriple(bad, 3); err == nil {
			t.Errorf("expected an error for %q", bad)
		}
	}
}

func TestBuildSettings(t *testing.T) {
	*nVariants = 1000
	*h2Str = "0.3,0.4"
	*piStr = "0.01"
	*nStr = "50000"
	*edges = []string{"1:2:0.45"}
	*noPleiotropy = true
	defer func() {
		*edges = nil
		*noPleiotropy = false
	}()

	s, err := buildSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.J != 1000 || len(s.H2) != 2 {
		t.Error("dimensions not carried over")
	}
	if s.SporadicPleiotropy {
		t.Error("-no-pleiotropy not applied")
	}
	if s.Direct == nil || s.Direct.At(0, 1) != 0.45 {
		t.Error("edge not applied")
	}
}
