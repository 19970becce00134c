package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	require.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetMultiline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "double enter", input: "a\nb\n\n\n", want: "a\nb"},
		{name: "crlf", input: "a\r\nb\r\n\r\n", want: "a\nb"},
		{name: "eof without blank line", input: "a\nb", want: "a\nb"},
		{name: "immediate blank line", input: "\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetMultiline(rdr(tt.input), "Enter text", &out)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGetPin(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("1234\n"), nil }
	var out bytes.Buffer
	pin, err := GetPin("PIN", &out)
	require.NoError(t, err)
	require.Equal(t, "1234", pin)
	require.Equal(t, "PIN: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPin("PIN", &out)
	require.Error(t, err)
}

func TestGetYesNo(t *testing.T) {
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false} {
		var out bytes.Buffer
		got, err := GetYesNo(rdr(in), "Sure?", &out)
		require.NoError(t, err)
		require.Equal(t, want, got, in)
	}
}
