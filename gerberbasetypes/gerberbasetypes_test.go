package gerberbasetypes

import "testing"

func TestPolType_Expose(t *testing.T) {
	cases := []struct {
		pol   PolType
		local bool
		want  bool
	}{
		{PolTypeDark, true, true},
		{PolTypeDark, false, false},
		{PolTypeClear, true, false},
		{PolTypeClear, false, true},
	}
	for _, c := range cases {
		if got := c.pol.Expose(c.local); got != c.want {
			t.Error(c.pol.String(), "local", c.local, "got", got, "expected", c.want)
		}
	}
}

func TestPolType_ExposeSymmetry(t *testing.T) {
	// flipping the polarity twice restores the bit
	for _, local := range []bool{true, false} {
		if PolTypeClear.Expose(PolTypeClear.Expose(local)) != local {
			t.Fatal("double inversion changed exposure for", local)
		}
		if PolTypeDark.Expose(local) == PolTypeClear.Expose(local) {
			t.Fatal("dark and clear gave the same exposure for", local)
		}
	}
}
