// Package seqfile reads and increments sequence numbers stored in a file.
//
// The read-increment-write cycle is not locked: two processes calling Next
// at the same time on the same file can both observe the same value.
package seqfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// SeqFile is a persistent, monotonically increasing counter backed by a file
// holding a single integer.
type SeqFile struct {
	fs   afero.Fs
	path string
}

// New returns a SeqFile operating on path.
func New(fs afero.Fs, path string) *SeqFile {
	return &SeqFile{fs: fs, path: path}
}

// Path returns the path of the backing file.
func (s *SeqFile) Path() string {
	return s.path
}

// Next produces the next sequence number. If the backing file does not
// exist it is created with 0, and 0 is returned.
func (s *SeqFile) Next() (int, error) {
	_, err := s.fs.Stat(s.path)
	if os.IsNotExist(err) {
		return 0, s.write(0)
	}
	if err != nil {
		return 0, err
	}

	seq, err := s.read()
	if err != nil {
		return 0, err
	}
	seq++
	return seq, s.write(seq)
}

func (s *SeqFile) read() (int, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return 0, fmt.Errorf("reading sequence file: %w", err)
	}
	seq, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parsing sequence file %s: %w", s.path, err)
	}
	return seq, nil
}

func (s *SeqFile) write(seq int) error {
	err := afero.WriteFile(s.fs, s.path, []byte(fmt.Sprintf("%d\n", seq)), 0644)
	if err != nil {
		return fmt.Errorf("writing sequence file: %w", err)
	}
	return nil
}
