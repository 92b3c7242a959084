// Package rename rewrites input read headers to the synthetic PacBio-style
// well names the Dazzler toolchain expects, and keeps the mapping needed to
// restore the original names after scrubbing.
package rename

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"dascrub/report"

	"github.com/klauspost/pgzip"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
)

// WellName is the placeholder well identifier used in every synthetic header.
const WellName = "reads"

// maxLineBytes bounds a single input line. Single-molecule reads run to about
// a megabase; 64M leaves generous headroom.
const maxLineBytes = 64 * 1024 * 1024

// FormatError reports unsupported or malformed input.
type FormatError struct {
	Msg string
}

func (e FormatError) Error() string {
	return e.Msg
}

// Read records what is needed to restore one renamed read.
type Read struct {
	Original string
	Comment  string
	Length   int
}

// ReadMap maps synthetic read numbers back to original read names, in input
// order. Built here, consumed by the restore package, mutated nowhere else.
type ReadMap struct {
	reads []Read
}

func (m *ReadMap) Len() int {
	return len(m.reads)
}

// Get returns the record for read number id.
func (m *ReadMap) Get(id int) (Read, bool) {
	if id < 0 || id >= len(m.reads) {
		return Read{}, false
	}
	return m.reads[id], true
}

func (m *ReadMap) TotalBases() int64 {
	var total int64
	for i := range m.reads {
		total += int64(m.reads[i].Length)
	}
	return total
}

// Lengths returns the read lengths in input order.
func (m *ReadMap) Lengths() []int {
	lengths := make([]int, len(m.reads))
	for i := range m.reads {
		lengths[i] = m.reads[i].Length
	}
	return lengths
}

// SyntheticName builds the Dazzler-friendly header for read number id:
// a fixed well name, the read number, and a nominal 0_length pulse range.
func SyntheticName(id, length int) string {
	return fmt.Sprintf("%s/%d/0_%d", WellName, id, length)
}

// Rename reads FASTA or FASTQ (optionally gzipped) from inputPath and writes
// a FASTA file with synthetic headers to outPath. Duplicate original names
// are permitted; each occurrence gets its own synthetic name. An empty input
// yields an empty map and an empty output file.
func Rename(inputPath, outPath string) (*ReadMap, error) {
	in, closeIn, err := openSniffed(inputPath)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	out := fileio.EasyCreate(outPath)
	m := &ReadMap{}
	err = translate(in, out, m)

	cerr := out.Close()
	exception.PanicOnErr(cerr)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// openSniffed opens a read file, detecting compression from the leading
// magic bytes rather than the file name.
func openSniffed(path string) (*bufio.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	br := bufio.NewReader(f)

	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, nil, err
	}

	switch {
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := pgzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		closer := func() {
			gz.Close()
			f.Close()
		}
		return bufio.NewReader(gz), closer, nil
	case len(magic) >= 3 && magic[0] == 'B' && magic[1] == 'Z' && magic[2] == 'h':
		f.Close()
		return nil, nil, FormatError{"bzip2 format not supported"}
	case len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4b && magic[2] == 0x03 && magic[3] == 0x04:
		f.Close()
		return nil, nil, FormatError{"zip format not supported"}
	}
	return br, func() { f.Close() }, nil
}

func translate(in *bufio.Reader, out io.Writer, m *ReadMap) error {
	first, err := in.Peek(1)
	if err == io.EOF {
		// no reads at all is valid
		return nil
	}
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1024*1024), maxLineBytes)

	switch first[0] {
	case '>':
		err = translateFasta(scanner, out, m)
	case '@':
		err = translateFastq(scanner, out, m)
	default:
		return FormatError{"input file is neither FASTA nor FASTQ"}
	}
	if err != nil {
		return err
	}
	return scanner.Err()
}

func translateFasta(scanner *bufio.Scanner, out io.Writer, m *ReadMap) error {
	var header string
	var seq strings.Builder
	var started bool

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if started {
				if err := emit(header, seq.String(), out, m); err != nil {
					return err
				}
			}
			header = line[1:]
			seq.Reset()
			started = true
			continue
		}
		seq.WriteString(line)
	}
	if started {
		return emit(header, seq.String(), out, m)
	}
	return nil
}

// translateFastq requires strictly four lines per record. Multi-line FASTQ
// exists in the wild but the record boundaries are ambiguous without parsing
// quality strings, so it is rejected outright.
func translateFastq(scanner *bufio.Scanner, out io.Writer, m *ReadMap) error {
	for scanner.Scan() {
		header := strings.TrimSpace(scanner.Text())
		if header == "" {
			continue
		}
		if header[0] != '@' {
			return FormatError{"failed to parse read header: " + header}
		}

		seq, ok := nextLine(scanner)
		if !ok {
			return FormatError{"truncated FASTQ record: " + header}
		}
		plus, ok := nextLine(scanner)
		if !ok {
			return FormatError{"truncated FASTQ record: " + header}
		}
		if !strings.HasPrefix(plus, "+") {
			return FormatError{"multi-line FASTQ records are not supported (offending read: " + header + ")"}
		}
		qual, ok := nextLine(scanner)
		if !ok {
			return FormatError{"truncated FASTQ record: " + header}
		}
		if len(qual) != len(seq) {
			return FormatError{"sequence and quality lengths differ for read: " + header}
		}

		if err := emit(header[1:], seq, out, m); err != nil {
			return err
		}
	}
	return nil
}

func nextLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func emit(header, seq string, out io.Writer, m *ReadMap) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return FormatError{"failed to parse read header: empty name"}
	}

	name, comment, _ := strings.Cut(header, " ")
	if len(seq) == 0 {
		report.Warning("read " + name + " has a zero-length sequence")
	}

	id := len(m.reads)
	_, err := fmt.Fprintf(out, ">%s\n%s\n", SyntheticName(id, len(seq)), seq)
	exception.PanicOnErr(err)

	m.reads = append(m.reads, Read{Original: name, Comment: comment, Length: len(seq)})
	return nil
}
