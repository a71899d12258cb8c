package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{" YES \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			ok, err := confirm(&out, strings.NewReader(tt.input), "Remove 1 task(s)?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, "Remove 1 task(s)? [y/N] ", out.String())
		})
	}
}

func TestConfirm_ReadError(t *testing.T) {
	_, err := confirm(&bytes.Buffer{}, iotest.ErrReader(errors.New("boom")), "Remove?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
