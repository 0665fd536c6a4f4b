package main

import (
	"bufio"
	"strings"
	"testing"
)

func TestRedactKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "****"},
		{"sk-abcdef123456", "sk-a****"},
	}
	for _, tc := range cases {
		if got := redactKey(tc.in); got != tc.want {
			t.Fatalf("redactKey(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo\nthree"); got != "one ..." {
		t.Fatalf("got %q", got)
	}
	if got := firstLine("  solo  "); got != "solo" {
		t.Fatalf("got %q", got)
	}
}

func TestReadMultiline(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("line two\nline three\n.\nignored\n"))
	got, err := readMultiline(sc, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "line two\nline three" {
		t.Fatalf("got %q", got)
	}
}

func TestReadMultiline_EOFWithoutTerminator(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("tail\n"))
	got, err := readMultiline(sc, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "tail" {
		t.Fatalf("got %q", got)
	}
}
