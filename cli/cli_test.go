package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/grovetools/ausec/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStandardCommandFlags(t *testing.T) {
	cmd := NewStandardCommand("ausec", "Fetch AEC media feed data")
	cmd.Run = func(*cobra.Command, []string) {}
	cmd.SetArgs([]string{"-v", "--json", "-c", "/tmp/ausec.yml"})
	require.NoError(t, cmd.Execute())

	opts := GetOptions(cmd)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.JSONOutput)
	assert.Equal(t, "/tmp/ausec.yml", opts.ConfigFile)
}

func TestStyledHelp(t *testing.T) {
	root := NewStandardCommand("ausec", "Fetch AEC media feed data")
	sub := &cobra.Command{
		Use:   "fetch",
		Short: "Download the latest bundles",
		Long:  "Download the latest bundles.\n\nExamples:\n# default election\nausec fetch --out data",
		Run:   func(*cobra.Command, []string) {},
	}
	sub.Flags().String("out", "", "Write documents to this directory")
	root.AddCommand(sub)
	ApplyStyledHelpRecursive(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"fetch", "--help"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "AUSEC FETCH")
	assert.Contains(t, out, "FLAGS")
	assert.Contains(t, out, "--out")
	assert.Contains(t, out, "GLOBAL FLAGS")
	assert.Contains(t, out, "--verbose")
	assert.Contains(t, out, "EXAMPLES")
	assert.Contains(t, out, "# default election")
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, "short", wrapText("short", 20))
	assert.Equal(t, "one two\nthree", wrapText("one two three", 8))
	assert.Equal(t, "a\nb", wrapText("a\nb", 20))
}

func TestParseDescription(t *testing.T) {
	desc, ex := parseDescription("Does things.\nExamples:\nausec list")
	assert.Equal(t, "Does things.", desc)
	assert.Equal(t, "ausec list", ex)

	desc, ex = parseDescription("Only text")
	assert.Equal(t, "Only text", desc)
	assert.Empty(t, ex)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "ambiguous election",
			err:  errors.AmbiguousElection([]string{"E2", "E1"}),
			want: []string{"E1, E2", "--election"},
		},
		{
			name: "override not found",
			err:  errors.OverrideNotFound("E9", []string{"E1"}),
			want: []string{"'E9'", "Available elections: E1"},
		},
		{
			name: "no match",
			err:  errors.NoMatch("/E1/Standard/Light", ".zip", "results"),
			want: []string{"No results bundle under /E1/Standard/Light"},
		},
		{
			name: "download over a dead connection",
			err:  errors.Download("/E1/x.zip", errors.Connection("host:21", stderrors.New("refused"))),
			want: []string{"/E1/x.zip", "could not be reached"},
		},
		{
			name: "depth guard",
			err:  errors.DepthExceeded("/a/b/c", 2),
			want: []string{"deeper than 2", "listing.max_depth"},
		},
		{
			name: "plain error",
			err:  stderrors.New("boom"),
			want: []string{"Error: boom"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &ErrorHandler{Out: &buf}
			assert.Equal(t, tt.err, h.Handle(tt.err))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestErrorHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := &ErrorHandler{Verbose: true, Out: &buf}
	h.Handle(errors.NoElection())
	assert.Contains(t, buf.String(), `"code": "NO_ELECTION_FOUND"`)
	assert.Nil(t, h.Handle(nil))
}

func TestVersionCommandJSON(t *testing.T) {
	root := NewStandardCommand("ausec", "test")
	root.AddCommand(NewVersionCommand("ausec"))

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version", "--json"})
	require.NoError(t, root.Execute())

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "dev", got["version"])
}
