// Package tplwriter writes a new file from a template by substituting
// "$KEY" tokens with values, line by line.
package tplwriter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// Substitution replaces every "$Key" token with Value.
type Substitution struct {
	Key   string
	Value string
}

// Rewrite reads the input template and writes output, applying every
// substitution, in order, to each line. A value containing the token of a
// substitution that comes later in the list is replaced by that later
// substitution; earlier substitutions are never applied again.
//
// The output file is created or truncated; a failure mid-write can leave
// a partial file behind.
func Rewrite(fs afero.Fs, input, output string, subs []Substitution) error {
	in, err := fs.Open(input)
	if err != nil {
		return fmt.Errorf("opening template: %w", err)
	}
	defer in.Close()

	out, err := fs.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}

	werr := rewrite(in, out, subs)
	cerr := out.Close()
	if werr != nil {
		return fmt.Errorf("writing %s: %w", output, werr)
	}
	return cerr
}

func rewrite(r io.Reader, w io.Writer, subs []Substitution) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if _, werr := bw.WriteString(Line(line, subs)); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Line applies subs to a single line of text.
func Line(line string, subs []Substitution) string {
	for _, s := range subs {
		line = strings.ReplaceAll(line, "$"+s.Key, s.Value)
	}
	return line
}
