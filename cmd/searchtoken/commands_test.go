package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"forum order follows the field table", []string{"encode", "--set", "iot=1", "--set", "pi=2"}, "pi=2&iot=1"},
		{"defaults are elided", []string{"encode", "--set", "pi=1"}, ""},
		{"text is escaped", []string{"encode", "--set", "ss=a&b"}, "ss=a%26b"},
		{"user kind", []string{"encode", "--kind", "user", "--set", "ion=true"}, "ion=1"},
		{"top10 kind", []string{"encode", "--kind", "top10", "--set", "tc=logins"}, "tc=logins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	_, err := run(t, "encode", "--set", "nope=1")
	assert.ErrorContains(t, err, "unknown field")

	_, err = run(t, "encode", "--set", "pi=two")
	assert.Error(t, err)

	_, err = run(t, "encode", "--set", "pi")
	assert.ErrorContains(t, err, "key=value")

	_, err = run(t, "encode", "--kind", "posts")
	assert.ErrorContains(t, err, "unknown kind")
}

func TestDecode(t *testing.T) {
	out, err := run(t, "decode", "#iot=1&pi=2&junk=3")
	require.NoError(t, err)

	var got struct {
		Kind    string         `json:"kind"`
		Request map[string]any `json:"request"`
		Token   string         `json:"token"`
		View    string         `json:"view"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "forum", got.Kind)
	assert.Equal(t, "pi=2&iot=1", got.Token)
	assert.Equal(t, "search", got.View)
	assert.Equal(t, true, got.Request["onlyTopics"])

	out, err = run(t, "decode")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "bmid=0", got.Token)
	assert.Equal(t, "navigation", got.View)
}
