package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestRootCommand_Text(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	require.Equal(t,
		"static: shape.Triangle{Base:5, Height:4, Area:0}\n"+
			"dynamic: &shape.Triangle{Base:5, Height:4, Area:0}\n",
		out)
}

func TestRootCommand_Verbose(t *testing.T) {
	out, err := execute(t, "-v")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "*collection.Static[shape.Triangle,*shape.Triangle]")
	require.Contains(t, lines[1], "*collection.Dynamic")
}

func TestRootCommand_JSON(t *testing.T) {
	out, err := execute(t, "--json")
	require.NoError(t, err)

	var decoded struct {
		RunID   string `json:"run_id"`
		Version string `json:"version"`
		Entries []struct {
			Dispatch string `json:"dispatch"`
			First    struct {
				Base   int `json:"base"`
				Height int `json:"height"`
				Area   int `json:"area"`
			} `json:"first"`
		} `json:"entries"`
		Stats struct {
			Collections int `json:"collections"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.NotEmpty(t, decoded.RunID)
	require.Equal(t, "dev", decoded.Version)
	require.Equal(t, 2, decoded.Stats.Collections)
	require.Len(t, decoded.Entries, 2)
	require.Equal(t, "static", decoded.Entries[0].Dispatch)
	require.Equal(t, "dynamic", decoded.Entries[1].Dispatch)
	for _, e := range decoded.Entries {
		require.Equal(t, 5, e.First.Base)
		require.Equal(t, 4, e.First.Height)
		require.Equal(t, 0, e.First.Area)
	}
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, "extra")
	require.Error(t, err)
}

func sampleDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "get current file path")
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "dispatch-sample")
}

func TestInspectCommand(t *testing.T) {
	out, err := execute(t, "inspect", "--dir", sampleDir(t))
	require.NoError(t, err)
	require.Contains(t, out, "(*sample.Dynamic).Calc -> sample.Shape.CalculateArea (dynamic)")
	require.Contains(t, out, "-> (*sample.Triangle).CalculateArea (static)")
	require.Contains(t, out, "sample.go:38:")
	require.Contains(t, out, "(*sample.Static[T, PT]).Calc -> PT.CalculateArea (generic)")

	var static int
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.Contains(line, "sample.go:38:") && strings.HasSuffix(line, "(static)") {
			static++
		}
	}
	require.Equal(t, 1, static, "instantiated Static.Calc must be reported as static:\n%s", out)
}

func TestInspectCommand_JSON(t *testing.T) {
	out, err := execute(t, "inspect", "--json", "--method", "Perimeter", "--dir", sampleDir(t))
	require.NoError(t, err)

	var decoded struct {
		Method    string `json:"method"`
		CallSites []struct {
			Caller string `json:"caller"`
			Mode   string `json:"mode"`
		} `json:"call_sites"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "Perimeter", decoded.Method)
	require.Len(t, decoded.CallSites, 1)
	require.Equal(t, "sample.Direct", decoded.CallSites[0].Caller)
	require.Equal(t, "static", decoded.CallSites[0].Mode)
}

func TestInspectCommand_LoadError(t *testing.T) {
	_, err := execute(t, "inspect", "--dir", sampleDir(t), "./does-not-exist")
	require.Error(t, err)

	var cErr *codedError
	require.True(t, errors.As(err, &cErr))
	require.Equal(t, exitError, cErr.code)
}
