// Package dag reads job information out of DAGMan workflow files.
package dag

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// ExtractIDs returns the id list of the DAG node named node, taken from the
// first line of the form
//
//	VARS <node> var1="<ids>"
//
// The boolean is false when no line matches.
func ExtractIDs(fs afero.Fs, node, filename string) (string, bool, error) {
	f, err := fs.Open(filename)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	re, err := regexp.Compile(fmt.Sprintf(`VARS %s var1="(.+?)"`, regexp.QuoteMeta(node)))
	if err != nil {
		return "", false, err
	}

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), " ")
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return m[1], true, nil
	}
	return "", false, s.Err()
}
