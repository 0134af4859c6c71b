package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestStdinInputReadLine(t *testing.T) {
	var out bytes.Buffer
	in := &stdinInput{reader: bufio.NewReader(strings.NewReader("hello there\r\nsecond\n")), out: &out}

	line, err := in.ReadLine("you> ")
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "hello there" {
		t.Fatalf("line = %q", line)
	}
	if out.String() != "you> " {
		t.Fatalf("prompt = %q", out.String())
	}

	line, err = in.ReadLine("you> ")
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "second" {
		t.Fatalf("line = %q", line)
	}
}

func TestStdinInputEOF(t *testing.T) {
	in := &stdinInput{reader: bufio.NewReader(strings.NewReader(""))}
	if _, err := in.ReadLine("you> "); err == nil {
		t.Fatal("want error at EOF")
	}
}
