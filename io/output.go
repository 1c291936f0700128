package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	goio "io"
	"os"
	"sync"

	"github.com/phil-mansfield/gotraj/particle"
)

/*
Output files have the following format:

    1 - (int32) Flag indicating the endianness of the file. 0 indicates a big
        endian byte ordering and -1 indicates a little endian byte order.
    2 - (int32) RecordKind of every record in the file.
    3 - (int32) Size of a single record in bytes. Should be checked for
        consistency.
    4 - ([]Record) Contiguous block of records until the end of the file.

Positions are in nm and energies are in eV.
*/

const (
	// Endianness used by default when writing output files. Files of any
	// endianness can be read.
	DefaultEndiannessFlag int32 = -1
)

type RecordKind int32

const (
	DepositKind RecordKind = iota
	TrajectoryKind
	DetectKind
)

func (k RecordKind) String() string {
	switch k {
	case DepositKind:
		return "Deposit"
	case TrajectoryKind:
		return "Trajectory"
	case DetectKind:
		return "Detect"
	}
	return fmt.Sprintf("RecordKind(%d)", int32(k))
}

// Size returns the size of a single record of this kind in bytes.
func (k RecordKind) Size() int {
	switch k {
	case DepositKind:
		return binary.Size(DepositRecord{})
	case TrajectoryKind:
		return binary.Size(TrajectoryRecord{})
	case DetectKind:
		return binary.Size(DetectRecord{})
	}
	return -1
}

// DepositRecord is a single energy deposit.
type DepositRecord struct {
	X, Y, Z        float32
	Energy, Loss   float32
	PixelX, PixelY int32
}

// TrajectoryRecord is an energy deposit along with the edges of the event
// tree which it connects.
type TrajectoryRecord struct {
	X, Y, Z        float32
	Energy, Loss   float32
	PixelX, PixelY int32
	Tag            uint32

	ParentEdge, ChildPrimary, ChildSecondary int32
}

// DetectRecord is an electron which has reached a detector.
type DetectRecord struct {
	X, Y, Z        float32
	DX, DY, DZ     float32
	Energy         float32
	PixelX, PixelY int32
}

// Pixels maps primary tags to detector pixels.
type Pixels [][2]int32

func (px Pixels) Get(tag uint32) (x, y int32) {
	if int(tag) >= len(px) { return -1, -1 }
	return px[tag][0], px[tag][1]
}

// PrimaryPixels returns the Pixels of a list of primaries.
func PrimaryPixels(ps []Primary) Pixels {
	max := uint32(0)
	for i := range ps {
		if ps[i].Tag >= max { max = ps[i].Tag + 1 }
	}
	px := make(Pixels, max)
	for i := range px { px[i] = [2]int32{ -1, -1 } }
	for i := range ps {
		px[ps[i].Tag] = [2]int32{ ps[i].PixelX, ps[i].PixelY }
	}
	return px
}

func (px Pixels) Deposit(before, after particle.Particle, tag uint32) DepositRecord {
	x, y := px.Get(tag)
	return DepositRecord{
		X: after.Pos[0], Y: after.Pos[1], Z: after.Pos[2],
		Energy: before.KinEnergy, Loss: before.KinEnergy - after.KinEnergy,
		PixelX: x, PixelY: y,
	}
}

func (px Pixels) Trajectory(
	before, after particle.Particle, tag uint32,
	parentEdge, childPrimary, childSecondary int,
) TrajectoryRecord {
	x, y := px.Get(tag)
	return TrajectoryRecord{
		X: after.Pos[0], Y: after.Pos[1], Z: after.Pos[2],
		Energy: before.KinEnergy, Loss: before.KinEnergy - after.KinEnergy,
		PixelX: x, PixelY: y, Tag: tag,
		ParentEdge: int32(parentEdge),
		ChildPrimary: int32(childPrimary),
		ChildSecondary: int32(childSecondary),
	}
}

func (px Pixels) Detect(p particle.Particle, tag uint32) DetectRecord {
	x, y := px.Get(tag)
	return DetectRecord{
		X: p.Pos[0], Y: p.Pos[1], Z: p.Pos[2],
		DX: p.Dir[0], DY: p.Dir[1], DZ: p.Dir[2],
		Energy: p.KinEnergy, PixelX: x, PixelY: y,
	}
}

// RecordWriter writes records of a single kind to an output file. It is
// safe to call Write from multiple goroutines.
type RecordWriter struct {
	mu sync.Mutex
	kind RecordKind
	f *os.File
	w *bufio.Writer
	n int
}

// CreateRecordWriter creates the named file and writes its header. "stdout"
// writes to os.Stdout.
func CreateRecordWriter(fname string, kind RecordKind) (*RecordWriter, error) {
	if kind.Size() < 0 {
		return nil, fmt.Errorf("Unrecognized record kind %d.", int32(kind))
	}

	f := os.Stdout
	if fname != "stdout" {
		var err error
		f, err = os.Create(fname)
		if err != nil { return nil, err }
	}

	rw := &RecordWriter{ kind: kind, f: f, w: bufio.NewWriter(f) }
	if err := writeHeader(rw.w, kind); err != nil {
		rw.closeFile()
		return nil, err
	}
	return rw, nil
}

func writeHeader(w goio.Writer, kind RecordKind) error {
	hd := [3]int32{ DefaultEndiannessFlag, int32(kind), int32(kind.Size()) }
	return binary.Write(w, binary.LittleEndian, &hd)
}

// Write writes a slice of records. The slice's element type must match the
// writer's RecordKind.
func (rw *RecordWriter) Write(recs interface{}) error {
	n, ok := rw.count(recs)
	if !ok {
		return fmt.Errorf(
			"Cannot write %T to a file of %s records.", recs, rw.kind,
		)
	}
	if n == 0 { return nil }

	rw.mu.Lock()
	defer rw.mu.Unlock()
	if err := binary.Write(rw.w, binary.LittleEndian, recs); err != nil {
		return err
	}
	rw.n += n
	return nil
}

func (rw *RecordWriter) count(recs interface{}) (int, bool) {
	switch r := recs.(type) {
	case []DepositRecord:
		return len(r), rw.kind == DepositKind
	case []TrajectoryRecord:
		return len(r), rw.kind == TrajectoryKind
	case []DetectRecord:
		return len(r), rw.kind == DetectKind
	}
	return 0, false
}

// Count returns the number of records written so far.
func (rw *RecordWriter) Count() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.n
}

// Close flushes the writer and closes its file.
func (rw *RecordWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	err := rw.w.Flush()
	if cerr := rw.closeFile(); err == nil { err = cerr }
	return err
}

func (rw *RecordWriter) closeFile() error {
	if rw.f == os.Stdout { return nil }
	return rw.f.Close()
}

// RecordBuffer collects records on a single goroutine and hands them to a
// RecordWriter whenever it fills.
type RecordBuffer[R DepositRecord | TrajectoryRecord | DetectRecord] struct {
	buf []R
	idx int
	w *RecordWriter
}

// NewRecordBuffer creates a RecordBuffer associated with the given writer.
func NewRecordBuffer[R DepositRecord | TrajectoryRecord | DetectRecord](
	w *RecordWriter, bufSize int,
) *RecordBuffer[R] {
	if bufSize <= 0 { bufSize = 1 }
	return &RecordBuffer[R]{ buf: make([]R, bufSize), w: w }
}

// Append adds a record to the buffer, which will eventually be written to
// the target writer.
func (rb *RecordBuffer[R]) Append(r R) error {
	rb.buf[rb.idx] = r
	rb.idx++
	if rb.idx == len(rb.buf) { return rb.Flush() }
	return nil
}

// Flush writes the contents of the buffer to its writer. This will be called
// automatically whenever the buffer fills.
func (rb *RecordBuffer[R]) Flush() error {
	err := rb.w.Write(rb.buf[:rb.idx])
	rb.idx = 0
	return err
}

func readHeader(r goio.Reader, kind RecordKind) (binary.ByteOrder, error) {
	var flag int32
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}

	var order binary.ByteOrder
	switch flag {
	case -1:
		order = binary.LittleEndian
	case 0:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("Unrecognized endianness flag %d.", flag)
	}

	var hd [2]int32
	if err := binary.Read(r, order, &hd); err != nil { return nil, err }
	if RecordKind(hd[0]) != kind {
		return nil, fmt.Errorf(
			"Expected a file of %s records, but found %s records.",
			kind, RecordKind(hd[0]),
		)
	} else if int(hd[1]) != kind.Size() {
		return nil, fmt.Errorf(
			"%s records are %d bytes, but the header gives a size of %d.",
			kind, kind.Size(), hd[1],
		)
	}

	return order, nil
}

// ReadTrajectories reads every record of a trajectory file.
func ReadTrajectories(r goio.Reader) ([]TrajectoryRecord, error) {
	br := bufio.NewReader(r)
	order, err := readHeader(br, TrajectoryKind)
	if err != nil { return nil, err }

	recs := []TrajectoryRecord{}
	for {
		rec := TrajectoryRecord{}
		err := binary.Read(br, order, &rec)
		if err == goio.EOF {
			return recs, nil
		} else if err != nil {
			return nil, fmt.Errorf(
				"Could not read trajectory record %d: %s", len(recs), err,
			)
		}
		recs = append(recs, rec)
	}
}

// ReadTrajectoryFile reads every record of the named trajectory file.
func ReadTrajectoryFile(fname string) ([]TrajectoryRecord, error) {
	f, err := os.Open(fname)
	if err != nil { return nil, err }
	defer f.Close()
	return ReadTrajectories(f)
}
