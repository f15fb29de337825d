package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haivivi/tio/pkg/buffer"
	"github.com/haivivi/tio/pkg/device"
	"github.com/haivivi/tio/pkg/kv"
	"github.com/haivivi/tio/pkg/stdio"
	"github.com/haivivi/tio/pkg/stream"
)

// setupTestEnv points the CLI at a fresh config file and returns its
// directory.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TIO_CONFIG", filepath.Join(dir, "config.yaml"))
	return dir
}

// setupTestEnvWithKV also replaces the record store with a shared memory
// store.
func setupTestEnvWithKV(t *testing.T) string {
	t.Helper()
	dir := setupTestEnv(t)
	testKVOverride = kv.NewMemory()
	t.Cleanup(func() { testKVOverride = nil })
	return dir
}

func consoleStream(t *testing.T, f *os.File, opts ...stream.Option) *stdio.Stream {
	t.Helper()
	s, err := stream.New(device.NewConsole(f), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// runCmd runs the CLI with input on stdin and returns what it wrote to
// stdout.
func runCmd(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()

	inPath := filepath.Join(dir, "stdin")
	if err := os.WriteFile(inPath, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}
	inFile, err := os.Open(inPath)
	if err != nil {
		t.Fatal(err)
	}
	defer inFile.Close()

	outPath := filepath.Join(dir, "stdout")
	outFile, err := os.Create(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer outFile.Close()

	errFile, err := os.Create(filepath.Join(dir, "stderr"))
	if err != nil {
		t.Fatal(err)
	}
	defer errFile.Close()

	out := consoleStream(t, outFile, stream.WithMode(buffer.ModeLine))
	errs := consoleStream(t, errFile, stream.WithMode(buffer.ModeNone))
	in := consoleStream(t, inFile,
		stream.WithMode(buffer.ModeNone),
		stream.WithTie(func() error { return stream.FlushBuffer(out) }),
	)

	oldIn, oldOut, oldErr := stdin, stdout, stderr
	stdin = func() *stdio.Stream { return in }
	stdout = func() *stdio.Stream { return out }
	stderr = func() *stdio.Stream { return errs }
	defer func() { stdin, stdout, stderr = oldIn, oldOut, oldErr }()

	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()
	resetFlags(rootCmd)

	if !out.Fail() {
		if err := stream.FlushBuffer(out); err != nil {
			t.Fatalf("flush stdout: %v", err)
		}
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	return string(data), runErr
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func mustRun(t *testing.T, input string, args ...string) string {
	t.Helper()
	out, err := runCmd(t, input, args...)
	if err != nil {
		t.Fatalf("tio %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestPrint(t *testing.T) {
	setupTestEnv(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"print", "{} + {} = {}", "1", "2", "3"}, "1 + 2 = 3\n"},
		{[]string{"print", "{} is {x} in hex, {b} in binary", "255", "255", "5"}, "255 is ff in hex, 101 in binary\n"},
		{[]string{"print", "{}|{}|{}", "2.5", "true", "ok"}, "2.5|true|ok\n"},
		{[]string{"print", "-n", "{{{}}", "x"}, "{x}"},
		{[]string{"print", "no holes"}, "no holes\n"},
	}
	for _, tt := range tests {
		if got := mustRun(t, "", tt.args...); got != tt.want {
			t.Errorf("tio %q = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestPrintLayoutMismatch(t *testing.T) {
	setupTestEnv(t)

	if _, err := runCmd(t, "", "print", "{} {}", "1"); err == nil {
		t.Fatal("print with too few values should fail")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"2.5", 2.5},
		{"1e3", 1000.0},
		{"true", true},
		{"12abc", "12abc"},
		{"", ""},
		{"0x10", "0x10"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestScan(t *testing.T) {
	setupTestEnv(t)

	out := mustRun(t, "7 2.5 ok\n", "scan", "{} {} {}", "--types", "int,float64,string", "--format", "json")
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got["f1"] != 7.0 || got["f2"] != 2.5 || got["f3"] != "ok" {
		t.Errorf("scan result = %v", got)
	}
}

func TestScanBasesAndNames(t *testing.T) {
	setupTestEnv(t)

	out := mustRun(t, "ff-101", "scan", "{x}-{b}", "--types", "uint8,int", "--names", "hex,bin", "--format", "json")
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got["hex"] != 255.0 || got["bin"] != 5.0 {
		t.Errorf("scan result = %v", got)
	}
}

func TestScanAllTable(t *testing.T) {
	setupTestEnv(t)

	out := mustRun(t, "a 1\nb 2\n", "scan", "{} {}", "--types", "string,int", "--all", "--format", "table")
	want := "f1  f2\n" +
		"a   1\n" +
		"b   2\n"
	if out != want {
		t.Errorf("scan --all = %q, want %q", out, want)
	}
}

func TestScanErrors(t *testing.T) {
	setupTestEnv(t)

	tests := []struct {
		input string
		args  []string
	}{
		{"abc", []string{"scan", "{}", "--types", "int"}},
		{"300", []string{"scan", "{}", "--types", "uint8"}},
		{"", []string{"scan", "{}", "--types", "int"}},
		{"1", []string{"scan", "{}", "--types", "complex"}},
		{"1 2", []string{"scan", "{} {}", "--types", "int"}},
		{"1", []string{"scan", "{}", "--types", "int", "--names", "a,b"}},
	}
	for _, tt := range tests {
		if _, err := runCmd(t, tt.input, tt.args...); err == nil {
			t.Errorf("tio %q on %q should fail", tt.args, tt.input)
		}
	}
}

func TestPutCatObject(t *testing.T) {
	dir := setupTestEnv(t)

	mustRun(t, "hello\nworld\n", "put", "greeting", "--to", "object")
	if _, err := os.Stat(filepath.Join(dir, "data", "objects", "greeting")); err != nil {
		t.Fatalf("object not stored under the config dir: %v", err)
	}

	if got := mustRun(t, "", "cat", "greeting", "--from", "object"); got != "hello\nworld\n" {
		t.Errorf("cat = %q", got)
	}

	if _, err := runCmd(t, "", "cat", "missing", "--from", "object"); err == nil {
		t.Error("cat of a missing object should fail")
	}
	if _, err := runCmd(t, "x", "put", "greeting", "--to", "object", "--append"); err == nil {
		t.Error("put --append to an object should fail")
	}
}

func TestPutCatRecord(t *testing.T) {
	setupTestEnvWithKV(t)

	mustRun(t, "41", "put", "counter", "--to", "record")
	mustRun(t, "2", "put", "counter", "--to", "record", "--append")

	if got := mustRun(t, "", "cat", "counter", "--from", "record"); got != "412" {
		t.Errorf("cat = %q, want %q", got, "412")
	}

	mustRun(t, "7", "put", "counter", "--to", "record")
	if got := mustRun(t, "", "cat", "counter", "--from", "record"); got != "7" {
		t.Errorf("cat after replace = %q, want %q", got, "7")
	}
}

func TestCatFiles(t *testing.T) {
	setupTestEnv(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("one\n"), 0644)
	os.WriteFile(b, []byte("two\n"), 0644)

	if got := mustRun(t, "", "cat", a, b); got != "one\ntwo\n" {
		t.Errorf("cat = %q", got)
	}
	if _, err := runCmd(t, "", "cat", filepath.Join(dir, "nope")); err == nil {
		t.Error("cat of a missing file should fail")
	}
	if _, err := runCmd(t, "", "cat", a, "--from", "tape"); err == nil {
		t.Error("cat --from tape should fail")
	}
}

func TestCatLocale(t *testing.T) {
	setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "latin1.txt")
	os.WriteFile(path, []byte("caf\xe9\n"), 0644)

	if got := mustRun(t, "", "cat", path, "--locale", "latin1"); got != "café\n" {
		t.Errorf("cat --locale latin1 = %q, want %q", got, "café\n")
	}
}

func TestPutFileLocale(t *testing.T) {
	setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "out.txt")

	mustRun(t, "café", "put", path, "--locale", "latin1")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "caf\xe9" {
		t.Errorf("file = %q, want latin1 bytes", data)
	}
}

func TestConv(t *testing.T) {
	setupTestEnv(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	mid := filepath.Join(dir, "mid.txt")
	out := filepath.Join(dir, "out.txt")
	os.WriteFile(in, []byte("naïve café\n"), 0644)

	mustRun(t, "", "conv", in, mid, "--to", "latin1")
	data, _ := os.ReadFile(mid)
	if string(data) != "na\xefve caf\xe9\n" {
		t.Fatalf("latin1 output = %q", data)
	}

	mustRun(t, "", "conv", mid, out, "--from", "latin1")
	data, _ = os.ReadFile(out)
	if string(data) != "naïve café\n" {
		t.Errorf("round trip = %q", data)
	}

	if _, err := runCmd(t, "", "conv", in, out, "--to", "klingon"); err == nil {
		t.Error("conv to an unknown encoding should fail")
	}
}

func TestStat(t *testing.T) {
	setupTestEnvWithKV(t)
	path := filepath.Join(t.TempDir(), "data.bin")
	os.WriteFile(path, make([]byte, 2048), 0644)

	out := mustRun(t, "", "stat", path, "--format", "json")
	var rows []map[string]string
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(rows) != 1 || rows[0]["size"] != "2.0 KiB" || rows[0]["bytes"] != "2,048" || rows[0]["kind"] != "file" {
		t.Errorf("stat = %v", rows)
	}

	mustRun(t, "12345", "put", "n", "--to", "record")
	out = mustRun(t, "", "stat", "n", "--from", "record", "--format", "json")
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if rows[0]["bytes"] != "5" || rows[0]["modified"] != "-" {
		t.Errorf("stat record = %v", rows)
	}
}

func TestConfigFlow(t *testing.T) {
	setupTestEnv(t)

	if out := mustRun(t, "", "config", "add-context", "dev"); !strings.Contains(out, "created") {
		t.Errorf("add-context output = %q", out)
	}
	mustRun(t, "", "config", "add-context", "prod")
	mustRun(t, "", "config", "set", "prod", "store", "s3")
	mustRun(t, "", "config", "set", "prod", "s3.secret_key", "0123456789abcdef")
	mustRun(t, "", "config", "set", "dev", "stream.mode", "line")
	mustRun(t, "", "config", "use-context", "dev")

	if out := mustRun(t, "", "config", "current-context"); out != "dev\n" {
		t.Errorf("current-context = %q", out)
	}

	out := mustRun(t, "", "config", "list-contexts", "--format", "table")
	want := "CURRENT  NAME  STORE  KV\n" +
		"*        dev   local  badger\n" +
		"         prod  s3     badger\n"
	if out != want {
		t.Errorf("list-contexts = %q, want %q", out, want)
	}

	out = mustRun(t, "", "config", "view", "prod")
	if strings.Contains(out, "0123456789abcdef") || !strings.Contains(out, "0123********cdef") {
		t.Errorf("view should mask the secret key, got: %s", out)
	}
	if out := mustRun(t, "", "config", "view"); !strings.Contains(out, "mode: line") {
		t.Errorf("view of the current context = %s", out)
	}

	if _, err := runCmd(t, "", "config", "set", "dev", "colour", "red"); err == nil {
		t.Error("set of an unknown key should fail")
	}
	if _, err := runCmd(t, "", "config", "use-context", "staging"); err == nil {
		t.Error("use-context of a missing context should fail")
	}

	mustRun(t, "", "config", "delete-context", "dev")
	if out := mustRun(t, "", "config", "current-context"); !strings.Contains(out, "No current context") {
		t.Errorf("current-context after delete = %q", out)
	}
}

func TestContextStreamSettings(t *testing.T) {
	setupTestEnvWithKV(t)
	mustRun(t, "", "config", "add-context", "tiny")
	mustRun(t, "", "config", "set", "tiny", "stream.buffer_size", "4")
	mustRun(t, "", "config", "set", "tiny", "stream.mode", "sometimes")

	if _, err := runCmd(t, "data", "--context", "tiny", "put", "r", "--to", "record"); err == nil {
		t.Error("put with an invalid stream mode should fail")
	}

	mustRun(t, "", "config", "set", "tiny", "stream.mode", "full")
	mustRun(t, "0123456789", "--context", "tiny", "put", "r", "--to", "record")
	if got := mustRun(t, "", "--context", "tiny", "cat", "r", "--from", "record"); got != "0123456789" {
		t.Errorf("cat through a 4-byte buffer = %q", got)
	}
}

func TestVersion(t *testing.T) {
	setupTestEnv(t)

	if out := mustRun(t, "", "version"); !strings.HasPrefix(out, "tio dev") {
		t.Errorf("version = %q", out)
	}

	out := mustRun(t, "", "version", "--format", "json")
	if !strings.Contains(out, `"version": "dev"`) {
		t.Errorf("version --format json = %q", out)
	}
}
