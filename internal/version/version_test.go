package version

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var wellFormed = regexp.MustCompile(`^\d+\.\d{2}$`)

func TestNext_ConcreteScenarios(t *testing.T) {
	cases := map[string]string{
		"1.00": "1.01",
		"1.01": "1.02",
		"1.98": "1.99",
		"1.99": "2.00",
		"2.00": "2.01",
		"2.98": "2.99",
		"2.99": "3.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Next(in), "Next(%q)", in)
	}
}

func TestNext_CarryProperty(t *testing.T) {
	for m := 0; m < 250; m++ {
		in := fmt.Sprintf("%d.99", m)
		assert.Equal(t, fmt.Sprintf("%d.00", m+1), Next(in))
	}
}

func TestNext_NoCarryProperty(t *testing.T) {
	for m := 0; m < 5; m++ {
		for n := 0; n <= 98; n++ {
			in := fmt.Sprintf("%d.%02d", m, n)
			assert.Equal(t, fmt.Sprintf("%d.%02d", m, n+1), Next(in))
		}
	}
}

func TestNext_IsMonotonic(t *testing.T) {
	v := Version{Major: 0, Minor: 0}
	for i := 0; i < 1000; i++ {
		next := v.Next()
		assert.True(t, v.Less(next), "%s should sort before %s", v, next)
		v = next
	}
	assert.Equal(t, "10.00", v.String())
}

func TestNext_MalformedInputStaysWellFormed(t *testing.T) {
	cases := map[string]string{
		"":        "0.01",
		"abc":     "0.01",
		"1":       "1.01",
		"1.":      "1.01",
		".5":      "0.06",
		"x.y":     "0.01",
		"-3.-4":   "0.01",
		"1.2.3":   "1.03",
		" 4.10 ":  "4.11",
		"1.150":   "2.00",
		"7.ab":    "7.01",
		"999.99":  "1000.00",
		"2.5-rc1": "2.01",
	}
	for in, want := range cases {
		got := Next(in)
		assert.Regexp(t, wellFormed, got, "Next(%q)", in)
		assert.Equal(t, want, got, "Next(%q)", in)
	}
}

func TestParse_RoundTripsWellFormed(t *testing.T) {
	for _, s := range []string{"0.00", "1.00", "1.07", "12.99"} {
		assert.Equal(t, s, Parse(s).String())
	}
}

func TestVersion_NextDoesNotMutate(t *testing.T) {
	v := Initial
	_ = v.Next()
	assert.Equal(t, "1.00", v.String())
	assert.Equal(t, "1.00", Initial.String())
}

func TestVersion_Less(t *testing.T) {
	assert.True(t, Version{1, 99}.Less(Version{2, 0}))
	assert.True(t, Version{1, 1}.Less(Version{1, 2}))
	assert.False(t, Version{2, 0}.Less(Version{2, 0}))
	assert.False(t, Version{3, 0}.Less(Version{2, 50}))
}
