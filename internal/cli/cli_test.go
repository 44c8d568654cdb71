package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/cfgdiff/internal/config"
	"github.com/codalotl/cfgdiff/internal/logging"
)

type runResult struct {
	code   int
	err    error
	stdout string
	stderr string
}

func runCLI(t *testing.T, fs afero.Fs, stdin string, args ...string) runResult {
	t.Helper()
	for envVar := range config.EnvVars {
		t.Setenv(envVar, "")
	}
	t.Setenv(logging.FileEnvVar, "")
	t.Setenv("NO_COLOR", "")

	var out, errOut bytes.Buffer
	code, err := Run(append([]string{"cfgdiff"}, args...), &RunOptions{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errOut,
		Fs:  fs,
		Dir: "/work",
	})
	return runResult{code: code, err: err, stdout: out.String(), stderr: errOut.String()}
}

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0o755))
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

const (
	oldCfg = "hostname r1\n!\ninterface Gi0/1\n ip address 1.1.1.1\n!\n"
	newCfg = "hostname r1\n!\ninterface Gi0/1\n ip address 2.2.2.2\n!\n"

	scenarioReport = "interface Gi0/1\n  - ip address 1.1.1.1\n  + ip address 2.2.2.2\n"
)

func scenarioFs(t *testing.T) afero.Fs {
	return newFs(t, map[string]string{"/work/old.cfg": oldCfg, "/work/new.cfg": newCfg})
}

func TestRun_Diff(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "/work/old.cfg", "/work/new.cfg")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, 0, r.code)
	assert.Equal(t, scenarioReport, r.stdout)
	assert.Empty(t, r.stderr)
}

func TestRun_IdenticalIsEmpty(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "/work/old.cfg", "/work/old.cfg")
	require.NoError(t, r.err)
	assert.Equal(t, "", r.stdout)
}

func TestRun_MissingInputExits1(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "/work/old.cfg", "/work/missing.cfg")
	require.Error(t, r.err)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "read /work/missing.cfg")
	assert.NotContains(t, r.stderr, "Usage:")
	assert.Empty(t, r.stdout)
}

func TestRun_DirectoryInputExits1(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "/work", "/work/new.cfg")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "not a regular file")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"one arg", []string{"/work/old.cfg"}},
		{"three args", []string{"a", "b", "c"}},
		{"unknown flag", []string{"--bogus", "/work/old.cfg", "/work/new.cfg"}},
		{"bad format", []string{"--format", "xml", "/work/old.cfg", "/work/new.cfg"}},
		{"bad indent", []string{"--indent", "0", "/work/old.cfg", "/work/new.cfg"}},
		{"bad regexp", []string{"--ignore", "(", "/work/old.cfg", "/work/new.cfg"}},
		{"bad encoding", []string{"--encoding", "klingon", "/work/old.cfg", "/work/new.cfg"}},
		{"bad log level", []string{"--log-level", "chatty", "/work/old.cfg", "/work/new.cfg"}},
		{"both stdin", []string{"-", "-"}},
		{"output and out-dir", []string{"-o", "/work/r.txt", "--out-dir", "/reports", "/work/old.cfg", "/work/new.cfg"}},
		{"dir arg count", []string{"dir", "/old"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, scenarioFs(t), "", tt.args...)
			require.Error(t, r.err)
			assert.Equal(t, 2, r.code, r.stderr)
			assert.Contains(t, r.stderr, "error: ")
			assert.Contains(t, r.stderr, "Usage:")
		})
	}
}

func TestRun_Help(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "-h")
	require.NoError(t, r.err)
	assert.Equal(t, 0, r.code)
	assert.Contains(t, r.stdout, "cfgdiff compares two hierarchical")
	assert.Empty(t, r.stderr)
}

func TestRun_FileNamedLikeSubcommand(t *testing.T) {
	fs := newFs(t, map[string]string{"/work/config": oldCfg, "/work/new.cfg": newCfg})

	r := runCLI(t, fs, "", "config", "/work/new.cfg")
	assert.Equal(t, 2, r.code, "bare name selects the subcommand")

	r = runCLI(t, fs, "", "/work/config", "/work/new.cfg")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, scenarioReport, r.stdout)

	r = runCLI(t, fs, "", "-h")
	assert.Contains(t, r.stdout, "./config")
}

func TestRun_Version(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "--version")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, Version)
}

func TestRun_Stdin(t *testing.T) {
	r := runCLI(t, scenarioFs(t), oldCfg, "-", "/work/new.cfg")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, scenarioReport, r.stdout)
}

func TestRun_OutputFile(t *testing.T) {
	fs := scenarioFs(t)
	r := runCLI(t, fs, "", "/work/old.cfg", "/work/new.cfg", "-o", "/work/out/report.txt")
	require.NoError(t, r.err, r.stderr)
	assert.Empty(t, r.stdout)

	b, err := afero.ReadFile(fs, "/work/out/report.txt")
	require.NoError(t, err)
	assert.Equal(t, scenarioReport, string(b))
}

func TestRun_OutDirWritesDatedReport(t *testing.T) {
	fs := scenarioFs(t)
	r := runCLI(t, fs, "", "/work/old.cfg", "/work/new.cfg", "--out-dir", "/reports", "--format", "json")
	require.NoError(t, r.err, r.stderr)

	path := strings.TrimSpace(r.stdout)
	assert.Regexp(t, regexp.MustCompile(`^/reports/diffConfig_\d{8}_\d{6}\.json$`), path)

	b, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "/work/old.cfg", doc["old"])
}

func TestRun_OutputBeatsConfiguredOutDir(t *testing.T) {
	fs := scenarioFs(t)
	require.NoError(t, afero.WriteFile(fs, "/work/.cfgdiff.yaml", []byte("outdir: /reports\n"), 0o644))

	r := runCLI(t, fs, "", "/work/old.cfg", "/work/new.cfg", "-o", "/work/r.txt")
	require.NoError(t, r.err, r.stderr)
	exists, err := afero.Exists(fs, "/work/r.txt")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = afero.DirExists(fs, "/reports")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_ProjectConfig(t *testing.T) {
	fs := scenarioFs(t)
	require.NoError(t, afero.WriteFile(fs, "/work/.cfgdiff.yaml", []byte("indent: 4\n"), 0o644))

	r := runCLI(t, fs, "", "/work/old.cfg", "/work/new.cfg")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "interface Gi0/1\n    - ip address 1.1.1.1\n    + ip address 2.2.2.2\n", r.stdout)

	r = runCLI(t, fs, "", "/work/old.cfg", "/work/new.cfg", "--indent", "1")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "interface Gi0/1\n - ip address 1.1.1.1\n + ip address 2.2.2.2\n", r.stdout)
}

func TestRun_InvalidProjectConfigExits1(t *testing.T) {
	fs := scenarioFs(t)
	require.NoError(t, afero.WriteFile(fs, "/work/.cfgdiff.json", []byte(`{"format": "xml"}`), 0o644))

	r := runCLI(t, fs, "", "/work/old.cfg", "/work/new.cfg")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "invalid configuration")
}

func TestRun_EnvConfig(t *testing.T) {
	fs := scenarioFs(t)
	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("CFGDIFF_FORMAT=markdown\n"), 0o644))

	r := runCLI(t, fs, "", "/work/old.cfg", "/work/new.cfg")
	require.NoError(t, r.err, r.stderr)
	assert.True(t, strings.HasPrefix(r.stdout, "## /work/old.cfg -> /work/new.cfg\n"), r.stdout)
}

func TestRun_ColorAlways(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "/work/old.cfg", "/work/new.cfg", "--color", "always")
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "\x1b[31m- ip address 1.1.1.1")

	r = runCLI(t, scenarioFs(t), "", "/work/old.cfg", "/work/new.cfg", "--color", "never", "--format", "color")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, scenarioReport, r.stdout)
}

func TestRun_IgnoreAndSkip(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/work/a.cfg": "hostname r1\nntp clock-period 100\n",
		"/work/b.cfg": "hostname r1\nntp clock-period 200\n!\n",
	})

	r := runCLI(t, fs, "", "/work/a.cfg", "/work/b.cfg", "--ignore", "^ntp clock-period")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "", r.stdout)

	r = runCLI(t, fs, "", "/work/a.cfg", "/work/b.cfg", "--ignore", "^ntp", "--skip", "end")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "+ !\n", r.stdout, "--skip replaces the default list")
}

func TestRun_Duplicates(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/work/a.cfg": "interface Gi0/1\n shutdown\ninterface Gi0/1\n description uplink\n",
		"/work/b.cfg": "interface Gi0/1\n description uplink\n",
	})

	r := runCLI(t, fs, "", "/work/a.cfg", "/work/b.cfg")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "interface Gi0/1\n  - shutdown\n", r.stdout)

	r = runCLI(t, fs, "", "/work/a.cfg", "/work/b.cfg", "--duplicates", "replace")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "", r.stdout)
}

func TestRun_Encoding(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/work/a.cfg": "banner motd\n",
		"/work/b.cfg": "banner motd\n caf\xe9\n",
	})

	r := runCLI(t, fs, "", "/work/a.cfg", "/work/b.cfg", "--encoding", "iso-8859-1")
	require.NoError(t, r.err, r.stderr)
	assert.Equal(t, "banner motd\n  + café\n", r.stdout)
}

func TestRun_LogLevel(t *testing.T) {
	r := runCLI(t, scenarioFs(t), "", "/work/old.cfg", "/work/new.cfg", "--log-level", "info")
	require.NoError(t, r.err)
	assert.Equal(t, scenarioReport, r.stdout)
	assert.Contains(t, r.stderr, "diffed")
}

func dirFs(t *testing.T) afero.Fs {
	return newFs(t, map[string]string{
		"/old/r1.cfg":      oldCfg,
		"/new/r1.cfg":      newCfg,
		"/old/r2.cfg":      "hostname r2\n",
		"/new/r2.cfg":      "hostname r2\n",
		"/new/core/r3.cfg": "hostname r3\n",
		"/old/readme.md":   "ignored\n",
	})
}

func TestRun_Dir(t *testing.T) {
	r := runCLI(t, dirFs(t), "", "dir", "/old", "/new")
	require.NoError(t, r.err, r.stderr)

	assert.True(t, strings.HasPrefix(r.stdout, "=== core/r3.cfg (added)\n+ hostname r3\n=== r1.cfg (changed)\n"+scenarioReport+"\n"), r.stdout)
	assert.Contains(t, r.stdout, "FILE ")
	assert.Contains(t, r.stdout, "3 files, 2 differ")
	assert.NotContains(t, r.stdout, "readme.md")
}

func TestRun_DirInclude(t *testing.T) {
	r := runCLI(t, dirFs(t), "", "dir", "/old", "/new", "--include", "core/**", "--format", "json")
	require.NoError(t, r.err, r.stderr)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "core/r3.cfg", docs[0]["file"])
	assert.Equal(t, "added", docs[0]["status"])
}

func TestRun_DirMissingRootExits1(t *testing.T) {
	r := runCLI(t, dirFs(t), "", "dir", "/old", "/nope")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "/nope")
}

func TestRun_Config(t *testing.T) {
	fs := scenarioFs(t)
	require.NoError(t, afero.WriteFile(fs, "/work/.cfgdiff.json", []byte(`{"color": "never"}`), 0o644))

	r := runCLI(t, fs, "", "config", "--indent", "3")
	require.NoError(t, r.err, r.stderr)

	var got struct {
		Indent  int
		Color   string
		Format  string
		Sources map[string]config.Providence
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, 3, got.Indent)
	assert.Equal(t, "never", got.Color)
	assert.Equal(t, "text", got.Format)
	assert.Equal(t, config.Providence{SourceType: "flag", SourceIdentifier: "--indent"}, got.Sources["indent"])
	assert.Equal(t, config.Providence{SourceType: "file", SourceIdentifier: "/work/.cfgdiff.json"}, got.Sources["color"])
	assert.Equal(t, config.Providence{SourceType: "default"}, got.Sources["format"])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(usageErrorf("bad %s", "flag")))
	assert.Equal(t, 2, exitCode(fmt.Errorf("wrapped: %w", usageErrorf("bad"))))
	assert.Equal(t, 3, exitCode(ExitError{Code: 3, Err: errors.New("custom")}))

	inner := errors.New("inner")
	assert.ErrorIs(t, UsageError{Err: inner}, inner)
	assert.ErrorIs(t, ExitError{Code: 1, Err: inner}, inner)
	assert.Equal(t, "exit code 4", ExitError{Code: 4}.Error())
}
