// Package irfile reads and writes impulse-response library files: a
// chunk-based binary container holding multiple named impulse responses
// with metadata, one file per IR collection.
//
// Grounded on pw-convoverb/pkg/irformat's IRLB format (magic + version +
// index-then-chunks layout, length-prefixed UTF-8 strings for metadata
// fields), adapted to this package's own domain: entries are loaded
// straight into the float matrix shape dsp/upols/core.InitFilters and
// dsp/upols/core.CoreConvolverUniformT.SetImpulseResponse expect, one
// row per channel. Audio samples are stored as IEEE 754 binary32 rather
// than irformat's half-precision encoding — see DESIGN.md.
package irfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/upols/kernel"
)

const (
	magicNumber    = "UPIL"
	currentVersion uint16 = 1

	chunkTypeEntry = "ENT-"
	chunkTypeIndex = "INDX"
	chunkTypeMeta  = "META"
	chunkTypeAudio = "AUDI"

	fileHeaderSize  = 4 + 2 + 4 + 8 // magic + version + count + indexOffset
	chunkHeaderSize = 4 + 8         // chunkID + chunkSize(uint64)
	subChunkHeader  = 4 + 4         // chunkID + chunkSize(uint32)
)

// Entry is one impulse response: its descriptive metadata plus decoded
// audio, one row per channel.
type Entry struct {
	Name        string
	Description string
	Category    string
	Tags        []string
	SampleRate  float64
	Data        [][]float32 // [channel][sample]
}

// Channels returns the number of channels stored in the entry.
func (e *Entry) Channels() int { return len(e.Data) }

// Length returns the number of samples per channel.
func (e *Entry) Length() int {
	if len(e.Data) == 0 {
		return 0
	}
	return len(e.Data[0])
}

// ToFilterMatrix converts one channel of the entry's audio into the
// []F row shape dsp/upols/core.InitFilters and SetImpulseResponse take.
func ToFilterMatrix[F kernel.Float](e *Entry, channel int) ([]F, error) {
	if channel < 0 || channel >= len(e.Data) {
		return nil, fmt.Errorf("irfile: channel %d out of range (have %d)", channel, len(e.Data))
	}
	row := make([]F, len(e.Data[channel]))
	for i, v := range e.Data[channel] {
		row[i] = F(v)
	}
	return row, nil
}

// Library is an in-memory collection of Entry values, as assembled by a
// caller before writing, or returned whole by ReadLibrary.
type Library struct {
	Version uint16
	Entries []*Entry
}

// NewLibrary returns an empty library at the current format version.
func NewLibrary() *Library {
	return &Library{Version: currentVersion}
}

// Add appends e to the library.
func (lib *Library) Add(e *Entry) { lib.Entries = append(lib.Entries, e) }

// IndexEntry is the lightweight per-entry record the index chunk holds,
// enough to list a library's contents without decoding any audio.
type IndexEntry struct {
	Offset     uint64
	SampleRate float64
	Channels   int
	Length     int
	Name       string
	Category   string
}

// Reader reads an impulse-response library file, lazily decoding audio
// only when Load or LoadByName is called.
type Reader struct {
	r       io.ReadSeeker
	version uint16
	count   uint32
	index   []IndexEntry
}

// NewReader parses r's header and index. r must support seeking since
// the index trails the entry chunks.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	rd := &Reader{r: r}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	if err := rd.readIndex(); err != nil {
		return nil, err
	}
	return rd, nil
}

func (rd *Reader) readHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(rd.r, magic); err != nil {
		return fmt.Errorf("irfile: read magic: %w", err)
	}
	if string(magic) != magicNumber {
		return fmt.Errorf("irfile: invalid magic %q", magic)
	}
	if err := binary.Read(rd.r, binary.LittleEndian, &rd.version); err != nil {
		return fmt.Errorf("irfile: read version: %w", err)
	}
	if rd.version != currentVersion {
		return fmt.Errorf("irfile: unsupported version %d", rd.version)
	}
	if err := binary.Read(rd.r, binary.LittleEndian, &rd.count); err != nil {
		return fmt.Errorf("irfile: read count: %w", err)
	}
	var indexOffset uint64
	if err := binary.Read(rd.r, binary.LittleEndian, &indexOffset); err != nil {
		return fmt.Errorf("irfile: read index offset: %w", err)
	}
	if _, err := rd.r.Seek(int64(indexOffset), io.SeekStart); err != nil {
		return fmt.Errorf("irfile: seek to index: %w", err)
	}
	rd.index = make([]IndexEntry, 0, rd.count)
	return nil
}

func (rd *Reader) readIndex() error {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(rd.r, chunkID); err != nil {
		return fmt.Errorf("irfile: read index chunk id: %w", err)
	}
	if string(chunkID) != chunkTypeIndex {
		return fmt.Errorf("irfile: expected index chunk, got %q", chunkID)
	}
	var chunkSize uint64
	if err := binary.Read(rd.r, binary.LittleEndian, &chunkSize); err != nil {
		return fmt.Errorf("irfile: read index chunk size: %w", err)
	}
	for i := uint32(0); i < rd.count; i++ {
		entry, err := rd.readIndexEntry()
		if err != nil {
			return err
		}
		rd.index = append(rd.index, entry)
	}
	return nil
}

func (rd *Reader) readIndexEntry() (IndexEntry, error) {
	var e IndexEntry
	if err := binary.Read(rd.r, binary.LittleEndian, &e.Offset); err != nil {
		return e, fmt.Errorf("irfile: read index offset: %w", err)
	}
	var sr uint64
	if err := binary.Read(rd.r, binary.LittleEndian, &sr); err != nil {
		return e, fmt.Errorf("irfile: read index sample rate: %w", err)
	}
	e.SampleRate = math.Float64frombits(sr)
	var channels, length uint32
	if err := binary.Read(rd.r, binary.LittleEndian, &channels); err != nil {
		return e, fmt.Errorf("irfile: read index channels: %w", err)
	}
	e.Channels = int(channels)
	if err := binary.Read(rd.r, binary.LittleEndian, &length); err != nil {
		return e, fmt.Errorf("irfile: read index length: %w", err)
	}
	e.Length = int(length)
	name, err := rd.readString()
	if err != nil {
		return e, err
	}
	e.Name = name
	category, err := rd.readString()
	if err != nil {
		return e, err
	}
	e.Category = category
	return e, nil
}

func (rd *Reader) readString() (string, error) {
	var n uint16
	if err := binary.Read(rd.r, binary.LittleEndian, &n); err != nil {
		return "", fmt.Errorf("irfile: read string length: %w", err)
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return "", fmt.Errorf("irfile: read string: %w", err)
	}
	return string(buf), nil
}

// Version reports the file's format version.
func (rd *Reader) Version() uint16 { return rd.version }

// Count reports the number of entries in the library.
func (rd *Reader) Count() int { return len(rd.index) }

// List returns the index, without decoding any audio.
func (rd *Reader) List() []IndexEntry {
	out := make([]IndexEntry, len(rd.index))
	copy(out, rd.index)
	return out
}

// Load decodes and returns the entry at idx.
func (rd *Reader) Load(idx int) (*Entry, error) {
	if idx < 0 || idx >= len(rd.index) {
		return nil, fmt.Errorf("irfile: index %d out of range", idx)
	}
	if _, err := rd.r.Seek(int64(rd.index[idx].Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("irfile: seek to entry: %w", err)
	}
	return rd.readEntryChunk()
}

// LoadByName decodes and returns the first entry named name.
func (rd *Reader) LoadByName(name string) (*Entry, error) {
	for i, e := range rd.index {
		if e.Name == name {
			return rd.Load(i)
		}
	}
	return nil, fmt.Errorf("irfile: entry %q not found", name)
}

func (rd *Reader) readEntryChunk() (*Entry, error) {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(rd.r, chunkID); err != nil {
		return nil, fmt.Errorf("irfile: read entry chunk id: %w", err)
	}
	if string(chunkID) != chunkTypeEntry {
		return nil, fmt.Errorf("irfile: expected entry chunk, got %q", chunkID)
	}
	var chunkSize uint64
	if err := binary.Read(rd.r, binary.LittleEndian, &chunkSize); err != nil {
		return nil, fmt.Errorf("irfile: read entry chunk size: %w", err)
	}

	e := &Entry{}
	channels, length, err := rd.readMetaSubChunk(e)
	if err != nil {
		return nil, err
	}
	if err := rd.readAudioSubChunk(e, channels, length); err != nil {
		return nil, err
	}
	return e, nil
}

func (rd *Reader) readMetaSubChunk(e *Entry) (channels, length int, err error) {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(rd.r, chunkID); err != nil {
		return 0, 0, fmt.Errorf("irfile: read meta sub-chunk id: %w", err)
	}
	if string(chunkID) != chunkTypeMeta {
		return 0, 0, fmt.Errorf("irfile: expected meta sub-chunk, got %q", chunkID)
	}
	var subSize uint32
	if err := binary.Read(rd.r, binary.LittleEndian, &subSize); err != nil {
		return 0, 0, fmt.Errorf("irfile: read meta sub-chunk size: %w", err)
	}

	var sr uint64
	if err := binary.Read(rd.r, binary.LittleEndian, &sr); err != nil {
		return 0, 0, fmt.Errorf("irfile: read sample rate: %w", err)
	}
	e.SampleRate = math.Float64frombits(sr)

	var ch, n uint32
	if err := binary.Read(rd.r, binary.LittleEndian, &ch); err != nil {
		return 0, 0, fmt.Errorf("irfile: read channels: %w", err)
	}
	if err := binary.Read(rd.r, binary.LittleEndian, &n); err != nil {
		return 0, 0, fmt.Errorf("irfile: read length: %w", err)
	}

	name, err := rd.readString()
	if err != nil {
		return 0, 0, err
	}
	e.Name = name
	desc, err := rd.readString()
	if err != nil {
		return 0, 0, err
	}
	e.Description = desc
	category, err := rd.readString()
	if err != nil {
		return 0, 0, err
	}
	e.Category = category

	var tagCount uint16
	if err := binary.Read(rd.r, binary.LittleEndian, &tagCount); err != nil {
		return 0, 0, fmt.Errorf("irfile: read tag count: %w", err)
	}
	e.Tags = make([]string, tagCount)
	for i := range e.Tags {
		tag, err := rd.readString()
		if err != nil {
			return 0, 0, err
		}
		e.Tags[i] = tag
	}

	return int(ch), int(n), nil
}

func (rd *Reader) readAudioSubChunk(e *Entry, channels, length int) error {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(rd.r, chunkID); err != nil {
		return fmt.Errorf("irfile: read audio sub-chunk id: %w", err)
	}
	if string(chunkID) != chunkTypeAudio {
		return fmt.Errorf("irfile: expected audio sub-chunk, got %q", chunkID)
	}
	var subSize uint32
	if err := binary.Read(rd.r, binary.LittleEndian, &subSize); err != nil {
		return fmt.Errorf("irfile: read audio sub-chunk size: %w", err)
	}

	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, length)
		for i := range data[ch] {
			var bits uint32
			if err := binary.Read(rd.r, binary.LittleEndian, &bits); err != nil {
				return fmt.Errorf("irfile: read sample: %w", err)
			}
			data[ch][i] = math.Float32frombits(bits)
		}
	}
	e.Data = data
	return nil
}

// ReadLibrary reads an entire library in one call.
func ReadLibrary(r io.ReadSeeker) (*Library, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	lib := &Library{Version: rd.version, Entries: make([]*Entry, 0, len(rd.index))}
	for i := range rd.index {
		e, err := rd.Load(i)
		if err != nil {
			return nil, fmt.Errorf("irfile: load entry %d: %w", i, err)
		}
		lib.Entries = append(lib.Entries, e)
	}
	return lib, nil
}
