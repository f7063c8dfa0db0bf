package irfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer writes an impulse-response library file. Since the index trails
// the entry chunks but the header records its offset, w must support
// seeking back to patch that field in Close.
type Writer struct {
	w          io.WriteSeeker
	count      uint32
	offsets    []uint64
	metas      []*Entry
	currentPos uint64
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.WriteSeeker) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the file header. count is the number of entries
// that will follow via WriteEntry.
func (w *Writer) WriteHeader(count int) error {
	w.count = uint32(count)
	if _, err := w.w.Write([]byte(magicNumber)); err != nil {
		return fmt.Errorf("irfile: write magic: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, currentVersion); err != nil {
		return fmt.Errorf("irfile: write version: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, w.count); err != nil {
		return fmt.Errorf("irfile: write count: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint64(0)); err != nil {
		return fmt.Errorf("irfile: write index offset placeholder: %w", err)
	}
	w.currentPos = fileHeaderSize
	return nil
}

// WriteEntry appends e as the next entry chunk.
func (w *Writer) WriteEntry(e *Entry) error {
	w.offsets = append(w.offsets, w.currentPos)
	w.metas = append(w.metas, e)

	meta := w.buildMetaSubChunk(e)
	audio := w.buildAudioSubChunk(e)
	chunkSize := uint64(len(meta) + len(audio))

	if _, err := w.w.Write([]byte(chunkTypeEntry)); err != nil {
		return fmt.Errorf("irfile: write entry chunk id: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, chunkSize); err != nil {
		return fmt.Errorf("irfile: write entry chunk size: %w", err)
	}
	if _, err := w.w.Write(meta); err != nil {
		return fmt.Errorf("irfile: write meta sub-chunk: %w", err)
	}
	if _, err := w.w.Write(audio); err != nil {
		return fmt.Errorf("irfile: write audio sub-chunk: %w", err)
	}

	w.currentPos += chunkHeaderSize + chunkSize
	return nil
}

// Close writes the index chunk and patches the header's index offset.
func (w *Writer) Close() error {
	indexOffset := w.currentPos
	indexData := w.buildIndexChunk()

	if _, err := w.w.Write([]byte(chunkTypeIndex)); err != nil {
		return fmt.Errorf("irfile: write index chunk id: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint64(len(indexData))); err != nil {
		return fmt.Errorf("irfile: write index chunk size: %w", err)
	}
	if _, err := w.w.Write(indexData); err != nil {
		return fmt.Errorf("irfile: write index data: %w", err)
	}

	if _, err := w.w.Seek(4+2+4, io.SeekStart); err != nil {
		return fmt.Errorf("irfile: seek to index offset field: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, indexOffset); err != nil {
		return fmt.Errorf("irfile: patch index offset: %w", err)
	}
	return nil
}

func (w *Writer) buildMetaSubChunk(e *Entry) []byte {
	size := 8 + 4 + 4 +
		2 + len(e.Name) +
		2 + len(e.Description) +
		2 + len(e.Category) +
		2
	for _, tag := range e.Tags {
		size += 2 + len(tag)
	}

	buf := make([]byte, subChunkHeader+size)
	off := 0
	copy(buf[off:], chunkTypeMeta)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(size))
	off += 4

	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(e.SampleRate))
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], uint32(e.Channels()))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(e.Length()))
	off += 4

	off = putString(buf, off, e.Name)
	off = putString(buf, off, e.Description)
	off = putString(buf, off, e.Category)

	binary.LittleEndian.PutUint16(buf[off:], uint16(len(e.Tags)))
	off += 2
	for _, tag := range e.Tags {
		off = putString(buf, off, tag)
	}

	return buf
}

func (w *Writer) buildAudioSubChunk(e *Entry) []byte {
	n := e.Channels() * e.Length() * 4
	buf := make([]byte, subChunkHeader+n)
	off := 0
	copy(buf[off:], chunkTypeAudio)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(n))
	off += 4
	for ch := range e.Data {
		for _, v := range e.Data[ch] {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	return buf
}

func (w *Writer) buildIndexChunk() []byte {
	size := 0
	for _, e := range w.metas {
		size += 8 + 8 + 4 + 4 + 2 + len(e.Name) + 2 + len(e.Category)
	}
	buf := make([]byte, size)
	off := 0
	for i, e := range w.metas {
		binary.LittleEndian.PutUint64(buf[off:], w.offsets[i])
		off += 8
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(e.SampleRate))
		off += 8
		binary.LittleEndian.PutUint32(buf[off:], uint32(e.Channels()))
		off += 4
		binary.LittleEndian.PutUint32(buf[off:], uint32(e.Length()))
		off += 4
		off = putString(buf, off, e.Name)
		off = putString(buf, off, e.Category)
	}
	return buf
}

func putString(buf []byte, off int, s string) int {
	binary.LittleEndian.PutUint16(buf[off:], uint16(len(s)))
	off += 2
	copy(buf[off:], s)
	return off + len(s)
}

// WriteLibrary writes an entire library in one call.
func WriteLibrary(w io.WriteSeeker, lib *Library) error {
	writer := NewWriter(w)
	if err := writer.WriteHeader(len(lib.Entries)); err != nil {
		return err
	}
	for _, e := range lib.Entries {
		if err := writer.WriteEntry(e); err != nil {
			return err
		}
	}
	return writer.Close()
}
