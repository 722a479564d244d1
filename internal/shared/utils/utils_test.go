package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo.png", "my_photo.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\photo.png`, "photo.png"},
		{"weird!@#name.jpg", "weird_name.jpg"},
		{"...", "upload"},
		{"", "upload"},
		{"UPPER-case_ok.JPG", "UPPER-case_ok.JPG"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFilename(tc.in), "input %q", tc.in)
	}
}

func TestGetEnvVariable(t *testing.T) {
	t.Setenv("SOME_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnvVariable("SOME_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnvVariable("SOME_MISSING_KEY", "fallback"))
}
