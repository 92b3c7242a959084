// Package restore rewrites the scrubbed FASTA back to the caller's read
// names. Each scrubbed header carries the synthetic well name, the read
// number, and the surviving range; the read number resolves through the
// ReadMap built during renaming.
package restore

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"dascrub/rename"

	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

// InternalConsistencyError reports a scrubbed read header that cannot be
// resolved through the rename map. The external tools only ever narrow the
// range part of a header, so an unresolvable name means the contract between
// renaming and the toolchain was broken somewhere.
type InternalConsistencyError struct {
	Header string
}

func (e InternalConsistencyError) Error() string {
	return "scrubbed read header does not match any renamed input read: " + e.Header
}

// Restore streams the scrubbed reads to out with their original names, in
// the order they appear in the scrubbed file. Returns the number of reads
// and bases written.
func Restore(scrubbedFile string, reads *rename.ReadMap, out io.Writer) (int, int64, error) {
	w := bufio.NewWriter(out)
	var count int
	var bases int64

	emit := func(header, seq string) error {
		read, shrunk, err := resolve(header, reads)
		if err != nil {
			return err
		}
		w.WriteString(">")
		w.WriteString(read.Original)
		w.WriteString("/")
		w.WriteString(shrunk)
		if read.Comment != "" {
			w.WriteString(" ")
			w.WriteString(read.Comment)
		}
		w.WriteString("\n")
		w.WriteString(seq)
		w.WriteString("\n")
		count++
		bases += int64(len(seq))
		return nil
	}

	in := fileio.EasyOpen(scrubbedFile)
	var header string
	var seq strings.Builder
	var started bool
	for line, done := fileio.EasyNextRealLine(in); !done; line, done = fileio.EasyNextRealLine(in) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if started {
				if err := emit(header, seq.String()); err != nil {
					in.Close()
					return count, bases, err
				}
			}
			header = line[1:]
			seq.Reset()
			started = true
			continue
		}
		seq.WriteString(line)
	}
	err := in.Close()
	exception.PanicOnErr(err)

	if started {
		if err := emit(header, seq.String()); err != nil {
			return count, bases, err
		}
	}
	return count, bases, w.Flush()
}

// resolve splits a synthetic header of the form wellName/n/start_end and
// looks up read number n.
func resolve(header string, reads *rename.ReadMap) (rename.Read, string, error) {
	parts := strings.Split(header, "/")
	if len(parts) != 3 || parts[0] != rename.WellName {
		return rename.Read{}, "", InternalConsistencyError{Header: header}
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return rename.Read{}, "", InternalConsistencyError{Header: header}
	}
	read, ok := reads.Get(id)
	if !ok {
		return rename.Read{}, "", InternalConsistencyError{Header: header}
	}
	if !strings.Contains(parts[2], "_") {
		return rename.Read{}, "", InternalConsistencyError{Header: header}
	}
	return read, parts[2], nil
}
