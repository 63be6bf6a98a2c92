package initcond

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/stellarforge/nbody-sim/pkg/body"
)

// CheckpointVersion is written to and checked against the Version
// line of a checkpoint file.
const CheckpointVersion = "1"

// endMarker terminates the particle record section (spec §4.4 format).
const endMarker = "End"

// EncodeDouble returns the decimal string of the unsigned 64-bit
// integer whose bit pattern equals x's IEEE-754 binary64 encoding —
// the only lossless way to round-trip a float through text (spec §4.4,
// §9 "Encoded-double portability"). Grounded on utils.cpp's encode,
// generalized from a raw pointer reinterpretation to math.Float64bits.
func EncodeDouble(x float64) string {
	return strconv.FormatUint(math.Float64bits(x), 10)
}

// DecodeDouble is the inverse of EncodeDouble: a pure bitwise
// reinterpretation back to float64, preserving subnormals, signed
// zeros, infinities and NaN payloads exactly.
func DecodeDouble(s string) (float64, error) {
	bits, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("initcond: decoding double %q: %w", s, err)
	}
	return math.Float64frombits(bits), nil
}

// Checkpoint is the full round-trippable state of a simulation step
// (spec §4.4).
type Checkpoint struct {
	Iteration int
	Theta     float64
	G         float64
	Dt        float64
	Particles []*body.Particle
}

// FormatError reports that a checkpoint file's content does not match
// the expected line-by-line state machine (spec §7 "Format error").
type FormatError struct {
	Line   int
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("initcond: checkpoint format error at line %d: %s", e.Line, e.Detail)
}

// Save writes cp to path in the line format of spec §4.4: a Version
// line, scalar lines, one encoded particle line per particle in
// ascending index order, and a terminating End line. If path already
// exists it is first copied to path+backupSuffix (spec §4.4, §8
// scenario 6). The write goes to a temporary file in the same
// directory and is renamed into place, strengthening the reference's
// in-place write per §9 "Checkpoint atomicity" (DESIGN.md decision 4).
func Save(cp *Checkpoint, path, backupSuffix string) error {
	if _, err := os.Stat(path); err == nil {
		if err := backup(path, backupSuffix); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("initcond: stat %s: %w", path, err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("initcond: creating %s: %w", tmp, err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Version=%s\n", CheckpointVersion)
	fmt.Fprintf(w, "iteration=%d\n", cp.Iteration)
	fmt.Fprintf(w, "theta=%s\n", EncodeDouble(cp.Theta))
	fmt.Fprintf(w, "G=%s\n", EncodeDouble(cp.G))
	fmt.Fprintf(w, "dt=%s\n", EncodeDouble(cp.Dt))

	for i, p := range cp.Particles {
		pos := p.Pos()
		vel := p.Vel()
		fmt.Fprintf(w, "%d,%s,%s,%s,%s,%s,%s,%s\n", i,
			EncodeDouble(pos.X), EncodeDouble(pos.Y), EncodeDouble(pos.Z),
			EncodeDouble(p.Mass()),
			EncodeDouble(vel.X), EncodeDouble(vel.Y), EncodeDouble(vel.Z))
	}
	fmt.Fprintf(w, "%s\n", endMarker)

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("initcond: flushing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("initcond: closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("initcond: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

// backup copies path to path+suffix, overwriting any existing backup
// (spec §4.4 "Before writing ... copy it to a sibling backup path").
func backup(path, suffix string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("initcond: reading %s for backup: %w", path, err)
	}
	if err := os.WriteFile(path+suffix, src, 0o644); err != nil {
		return fmt.Errorf("initcond: writing backup %s: %w", path+suffix, err)
	}
	return nil
}

// parseState enumerates the linear state machine of spec §4.4: each
// line must arrive in exactly this order.
type parseState int

const (
	expectVersion parseState = iota
	expectIteration
	expectTheta
	expectG
	expectDt
	expectBody
	expectEOF
)

// Load reads a checkpoint written by Save, reproducing the reference's
// restore_config state machine. Any unexpected line — wrong field
// count, non-numeric value, trailing content after End — is a format
// error, and Load then returns no Checkpoint, so partially read
// particles never reach the caller (spec §7 "Format error").
func Load(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("initcond: opening %s: %w", path, err)
	}
	defer f.Close()

	cp := &Checkpoint{}
	state := expectVersion
	lineNo := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch state {
		case expectVersion:
			if !strings.HasPrefix(line, "Version=") {
				return nil, &FormatError{Line: lineNo, Detail: "expected Version= line"}
			}
			state = expectIteration

		case expectIteration:
			val, err := fieldValue(line, "iteration=", lineNo)
			if err != nil {
				return nil, err
			}
			iter, err := strconv.Atoi(val)
			if err != nil {
				return nil, &FormatError{Line: lineNo, Detail: "non-numeric iteration"}
			}
			cp.Iteration = iter
			state = expectTheta

		case expectTheta:
			val, err := fieldValue(line, "theta=", lineNo)
			if err != nil {
				return nil, err
			}
			cp.Theta, err = DecodeDouble(val)
			if err != nil {
				return nil, &FormatError{Line: lineNo, Detail: err.Error()}
			}
			state = expectG

		case expectG:
			val, err := fieldValue(line, "G=", lineNo)
			if err != nil {
				return nil, err
			}
			cp.G, err = DecodeDouble(val)
			if err != nil {
				return nil, &FormatError{Line: lineNo, Detail: err.Error()}
			}
			state = expectDt

		case expectDt:
			val, err := fieldValue(line, "dt=", lineNo)
			if err != nil {
				return nil, err
			}
			cp.Dt, err = DecodeDouble(val)
			if err != nil {
				return nil, &FormatError{Line: lineNo, Detail: err.Error()}
			}
			state = expectBody

		case expectBody:
			if line == endMarker {
				state = expectEOF
				continue
			}
			p, err := parseParticleLine(line, lineNo)
			if err != nil {
				return nil, err
			}
			cp.Particles = append(cp.Particles, p)

		case expectEOF:
			if line != "" {
				return nil, &FormatError{Line: lineNo, Detail: "unexpected trailing content after End"}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("initcond: reading %s: %w", path, err)
	}
	if state != expectEOF {
		return nil, &FormatError{Line: lineNo, Detail: "truncated checkpoint: End not reached"}
	}

	body.IndexAll(cp.Particles)
	return cp, nil
}

func fieldValue(line, prefix string, lineNo int) (string, error) {
	if !strings.HasPrefix(line, prefix) {
		return "", &FormatError{Line: lineNo, Detail: fmt.Sprintf("expected %sline", prefix)}
	}
	return strings.TrimPrefix(line, prefix), nil
}

// parseParticleLine decodes one "<i>,<x>,<y>,<z>,<m>,<vx>,<vy>,<vz>"
// record (spec §4.4), mirroring extract_particle's field-by-field
// state machine. The leading index is positional only: particles are
// re-indexed by IndexAll after the whole file loads.
func parseParticleLine(line string, lineNo int) (*body.Particle, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 8 {
		return nil, &FormatError{Line: lineNo, Detail: fmt.Sprintf("particle record has %d fields, want 8", len(fields))}
	}
	// fields[0] is the record's own index; validated but not trusted.
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return nil, &FormatError{Line: lineNo, Detail: "non-numeric particle index"}
	}

	vals := make([]float64, 7)
	for i, f := range fields[1:] {
		v, err := DecodeDouble(f)
		if err != nil {
			return nil, &FormatError{Line: lineNo, Detail: err.Error()}
		}
		vals[i] = v
	}
	x, y, z, m, vx, vy, vz := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6]
	return body.New(x, y, z, vx, vy, vz, m), nil
}
