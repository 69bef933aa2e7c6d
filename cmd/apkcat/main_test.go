package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/apk/internal/testutil"
)

func writeFixture(t *testing.T, entries []testutil.TestEntry) (apkPath, cfgPath string) {
	t.Helper()
	dir := t.TempDir()
	apkPath = filepath.Join(dir, "app.apk")
	require.NoError(t, os.WriteFile(apkPath, testutil.BuildAPK(t, entries), 0o600))
	cfgPath = filepath.Join(dir, "apkcat.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("progress: false\nlog_format: json\n"), 0o600))
	return apkPath, cfgPath
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func fixtureEntries() []testutil.TestEntry {
	return []testutil.TestEntry{
		{Name: "AndroidManifest.xml", Data: []byte("<manifest/>"), Method: testutil.MethodDeflate},
		{Name: "classes.dex", Data: []byte("dex\n035\x00one"), Method: testutil.MethodDeflate},
		{Name: "classes2.dex", Data: []byte("dex\n035\x00two")},
		{Name: "res/raw/blob.bin", Data: []byte("blob"), DeclaredCRC32: testutil.CRC(0xdeadbeef)},
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	apkPath, cfgPath := writeFixture(t, fixtureEntries())
	out, _, err := run(t, "list", "--config", cfgPath, "-i", apkPath)
	require.NoError(t, err)
	assert.Equal(t, "AndroidManifest.xml\nclasses.dex\nclasses2.dex\nres/raw/blob.bin\n", out)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	apkPath, cfgPath := writeFixture(t, fixtureEntries())
	out, _, err := run(t, "info", "--config", cfgPath, "-i", apkPath)
	require.NoError(t, err)
	assert.Contains(t, out, apkPath)
	assert.Contains(t, out, "sha256:")
	assert.Contains(t, out, "classes.dex, classes2.dex")
	assert.Contains(t, out, "true")
}

func TestChecksums(t *testing.T) {
	t.Parallel()

	apkPath, cfgPath := writeFixture(t, fixtureEntries())
	out, logs, err := run(t, "checksums", "--config", cfgPath, "-i", apkPath, "--workers", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[3], "  res/raw/blob.bin"))
	assert.Contains(t, logs, `"msg":"checksum mismatch"`)
	assert.Contains(t, logs, `"declared":"deadbeef"`)
}

func TestChecksums_DecodeFailure(t *testing.T) {
	t.Parallel()

	entries := append(fixtureEntries(), testutil.TestEntry{
		Name: "assets/bad.bin", Data: []byte("abc"), Method: testutil.MethodDeflate, Body: []byte{0xff},
	})
	apkPath, cfgPath := writeFixture(t, entries)
	out, _, err := run(t, "checksums", "--config", cfgPath, "-i", apkPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 5 entries")
	assert.NotContains(t, out, "assets/bad.bin")
}

func TestReport(t *testing.T) {
	t.Parallel()

	entries := append(fixtureEntries(), testutil.TestEntry{
		Name: "assets/bad.bin", Data: []byte("abc"), Method: testutil.MethodDeflate, Body: []byte{0xff},
	})
	apkPath, cfgPath := writeFixture(t, entries)
	out, _, err := run(t, "report", "--config", cfgPath, "-i", apkPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"NAME", "LABEL", "CRC32"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"classes.dex", "primary-payload"}, strings.Fields(lines[2])[:2])
	assert.Equal(t, []string{"res/raw/blob.bin", "other"}, strings.Fields(lines[4])[:2])
	assert.Equal(t, []string{"assets/bad.bin", "other", "unavailable"}, strings.Fields(lines[5]))
}

func TestCat(t *testing.T) {
	t.Parallel()

	apkPath, cfgPath := writeFixture(t, fixtureEntries())
	out, _, err := run(t, "cat", "classes.dex", "--config", cfgPath, "-i", apkPath)
	require.NoError(t, err)
	assert.Equal(t, "dex\n035\x00one", out)

	_, _, err = run(t, "cat", "missing.dex", "--config", cfgPath, "-i", apkPath)
	require.Error(t, err)
}

func TestRequiresInput(t *testing.T) {
	t.Parallel()

	_, cfgPath := writeFixture(t, fixtureEntries())
	_, _, err := run(t, "list", "--config", cfgPath)
	require.ErrorContains(t, err, "--input or --url")
}

func TestInvalidLogLevel(t *testing.T) {
	t.Parallel()

	apkPath, cfgPath := writeFixture(t, fixtureEntries())
	_, _, err := run(t, "list", "--config", cfgPath, "-i", apkPath, "--log-level", "loud")
	require.ErrorContains(t, err, "invalid log level")
}
