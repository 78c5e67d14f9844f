package main

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/check.v1"
)

type diffSuite struct{}

var _ = check.Suite(&diffSuite{})

func (s *diffSuite) TestDiffIdentical(c *check.C) {
	dir := c.MkDir()
	for _, fnm := range []string{"x.dbg", "y.dbg"} {
		exited := (&builder{}).RunCommand("kmergraph build", []string{"-local=true", "-k", "3", "-o", dir + "/" + fnm, "testdata/a.fasta"}, &bytes.Buffer{}, &bytes.Buffer{}, os.Stderr)
		c.Assert(exited, check.Equals, 0)
	}
	var stdout bytes.Buffer
	exited := (&differ{}).RunCommand("kmergraph diff", []string{dir + "/x.dbg", dir + "/y.dbg"}, &bytes.Buffer{}, &stdout, os.Stderr)
	c.Check(exited, check.Equals, 0)
	c.Check(stdout.String(), check.Equals, "")
}

func (s *diffSuite) TestDiffDifferent(c *check.C) {
	dir := c.MkDir()
	for _, fasta := range []string{"a", "b"} {
		exited := (&builder{}).RunCommand("kmergraph build", []string{"-local=true", "-k", "3", "-o", dir + "/" + fasta + ".dbg", "testdata/" + fasta + ".fasta"}, &bytes.Buffer{}, &bytes.Buffer{}, os.Stderr)
		c.Assert(exited, check.Equals, 0)
	}
	var stdout bytes.Buffer
	exited := (&differ{}).RunCommand("kmergraph diff", []string{dir + "/a.dbg", dir + "/b.dbg"}, &bytes.Buffer{}, &stdout, os.Stderr)
	c.Check(exited, check.Equals, 1)
	out := stdout.String()
	c.Check(strings.Contains(out, "- node AA\n"), check.Equals, true)
	c.Check(strings.Contains(out, "+ node TT\n"), check.Equals, true)
	c.Check(strings.Contains(out, "- edge AA AA 2\n"), check.Equals, true)
	c.Check(strings.Contains(out, "+ edge GT TT 1\n"), check.Equals, true)
}

func (s *diffSuite) TestDiffUsage(c *check.C) {
	var stderr bytes.Buffer
	exited := (&differ{}).RunCommand("kmergraph diff", []string{"only-one.dbg"}, &bytes.Buffer{}, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 2)
	c.Check(strings.Contains(stderr.String(), "usage:"), check.Equals, true)
}

func (s *diffSuite) TestDiffMissingFile(c *check.C) {
	var stderr bytes.Buffer
	exited := (&differ{}).RunCommand("kmergraph diff", []string{"testdata/nope.dbg", "testdata/nope2.dbg"}, &bytes.Buffer{}, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 2)
}
