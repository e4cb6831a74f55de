package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const schemaV1 = `
Point
- x => X: int
- y => Y: int
`

const schemaV2 = schemaV1 + "- label => Label: string\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsage(t *testing.T) {
	cases := map[string][]string{
		"no flags":         nil,
		"missing class":    {"-i", "x.schema"},
		"unknown flag":     {"--bogus"},
		"positional":       {"-i", "x", "-c", "p.S", "extra"},
		"check with watch": {"-i", "x", "-c", "p.S", "--check", "--watch"},
		"bad log level":    {"-i", "x", "-c", "p.S", "--log-level", "loud"},
		"config and input": {"--config", "c.yaml", "-i", "x"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			code, _, stderr := runCLI(t, args...)
			if code != 2 {
				t.Fatalf("exit code = %d, want 2\n%s", code, stderr)
			}
			if !strings.Contains(stderr, "Usage:") {
				t.Fatalf("usage banner missing:\n%s", stderr)
			}
		})
	}
}

func TestStdout(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "point.schema")
	writeFile(t, in, schemaV1)

	code, stdout, stderr := runCLI(t, "-i", in, "-c", "geo.Codecs", "-m")
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, stderr)
	}
	for _, want := range []string{
		"// Code generated by codecgen from point.schema. DO NOT EDIT.",
		"package geo",
		"type Codecs struct{}",
		"type Point struct",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout lacks %q:\n%s", want, stdout)
		}
	}
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "point.schema")
	out := filepath.Join(dir, "nested", "point_gen.go")
	writeFile(t, in, schemaV1)

	code, stdout, stderr := runCLI(t, "-i", in, "-o", out, "-c", "geo.Codecs", "--log-format", "json")
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, stderr)
	}
	if stdout != "" {
		t.Fatalf("nothing should be printed when writing a file, got:\n%s", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(stderr, `"message":"generated"`) {
		t.Fatalf("expected a JSON log line, got:\n%s", stderr)
	}

	code, _, stderr = runCLI(t, "-i", in, "-o", out, "-c", "geo.Codecs", "--log-level", "debug")
	if code != 0 || !strings.Contains(stderr, "up to date") {
		t.Fatalf("second run: %d\n%s", code, stderr)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "point.schema")
	out := filepath.Join(dir, "point_gen.go")
	writeFile(t, in, schemaV1)

	if code, _, stderr := runCLI(t, "-i", in, "-o", out, "-c", "geo.Codecs", "--check"); code != 1 || !strings.Contains(stderr, "out of date") {
		t.Fatalf("missing output should be stale: %d\n%s", code, stderr)
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatal("--check must not write the output")
	}

	if code, _, stderr := runCLI(t, "-i", in, "-o", out, "-c", "geo.Codecs"); code != 0 {
		t.Fatalf("generate: %d\n%s", code, stderr)
	}
	if code, _, stderr := runCLI(t, "-i", in, "-o", out, "-c", "geo.Codecs", "--check"); code != 0 {
		t.Fatalf("fresh output reported stale: %d\n%s", code, stderr)
	}

	writeFile(t, in, schemaV2)
	code, _, stderr := runCLI(t, "-i", in, "-o", out, "-c", "geo.Codecs", "--check")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "+\tcase \"label\":") {
		t.Fatalf("diff does not show the new field:\n%s", stderr)
	}

	if code, _, _ := runCLI(t, "-i", in, "-c", "geo.Codecs", "--check"); code != 2 {
		t.Fatalf("--check without an output file: exit %d, want 2", code)
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.schema"), schemaV1)
	writeFile(t, filepath.Join(dir, "b.schema"), "Box\n- w: double\n")
	cfg := filepath.Join(dir, "codecgen.yaml")
	writeFile(t, cfg, `
logging:
  level: warn
targets:
  - input: a.schema
    output: gen/a_gen.go
    class: gen.A
  - input: b.schema
    output: gen/b_gen.go
    class: gen.B
    access: internal
    make: true
`)
	code, _, stderr := runCLI(t, "--config", cfg)
	if code != 0 {
		t.Fatalf("exit code = %d\n%s", code, stderr)
	}
	b, err := os.ReadFile(filepath.Join(dir, "gen", "b_gen.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "type box struct") {
		t.Fatalf("internal target not honoured:\n%s", b)
	}
	if _, err := os.Stat(filepath.Join(dir, "gen", "a_gen.go")); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stderr, "generated") {
		t.Fatalf("config log level not applied:\n%s", stderr)
	}
}

func TestCompileError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.schema")
	writeFile(t, in, "A\n- x => X: Missing\n")
	code, _, stderr := runCLI(t, "-i", in, "-c", "p.S")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "error: ") || !strings.Contains(stderr, "Missing") {
		t.Fatalf("stderr:\n%s", stderr)
	}
	if strings.Contains(stderr, "Usage:") {
		t.Fatal("compile errors must not print usage")
	}
}

func TestLineDiff(t *testing.T) {
	from := "a\nb\nc\nd\ne\n"
	to := "a\nb\nC\nd\ne\n"
	want := " ...\n b\n-c\n+C\n d\n"
	if got := lineDiff(from, to, false); got != want {
		t.Fatalf("diff:\n%q\nwant:\n%q", got, want)
	}
	if got := lineDiff("", "x\n", false); got != "+x\n" {
		t.Fatalf("diff against empty: %q", got)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "point.schema")
	out := filepath.Join(dir, "point_gen.go")
	writeFile(t, in, schemaV1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan int, 1)
	var stderr bytes.Buffer
	go func() {
		done <- execute(ctx, []string{"-i", in, "-o", out, "-c", "geo.Codecs", "--watch"}, new(bytes.Buffer), &stderr)
	}()

	waitFor := func(cond func(string) bool) {
		t.Helper()
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			if b, err := os.ReadFile(out); err == nil && cond(string(b)) {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatal("timed out waiting for the output")
	}
	waitFor(func(s string) bool { return strings.Contains(s, "package geo") })

	writeFile(t, in, schemaV2)
	waitFor(func(s string) bool { return strings.Contains(s, `case "label":`) })

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exit code = %d\n%s", code, stderr.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
