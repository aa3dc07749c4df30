package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var ErrWriterClosed = errors.New("trace writer closed")

// TraceWriter пишет входящие события в сжатый поток.
type TraceWriter struct {
	mu      sync.Mutex
	enc     *zstd.Encoder
	closer  io.Closer
	started time.Time
	now     func() time.Time
	count   int
	closed  bool
}

// NewTraceWriter пишет заголовок и открывает zstd-поток поверх w.
func NewTraceWriter(w io.Writer, meta TraceMeta) (*TraceWriter, error) {
	if meta.Started.IsZero() {
		meta.Started = time.Now()
	}
	gameID := []byte(meta.GameID)
	if len(gameID) > 65535 {
		return nil, fmt.Errorf("game id too long: %d", len(gameID))
	}
	codec := []byte(meta.Codec)
	if len(codec) > 255 {
		return nil, fmt.Errorf("codec name too long: %d", len(codec))
	}

	header := TraceFileHeader{
		Version:   Version1,
		Timestamp: meta.Started.UnixMilli(),
		GameIDLen: uint16(len(gameID)),
		CodecLen:  uint8(len(codec)),
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(gameID); err != nil {
		return nil, err
	}
	if _, err := w.Write(codec); err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &TraceWriter{enc: enc, started: meta.Started, now: time.Now}, nil
}

// Record дописывает событие. Подходит как engine.Recorder.
func (t *TraceWriter) Record(event string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrWriterClosed
	}

	eventBytes := []byte(event)
	if len(eventBytes) > 255 {
		return fmt.Errorf("event name too long: %d", len(eventBytes))
	}
	offset := t.now().Sub(t.started).Milliseconds()
	if offset < 0 {
		offset = 0
	}

	rh := RecordHeader{
		OffsetMs:   uint32(offset),
		EventLen:   uint8(len(eventBytes)),
		PayloadLen: uint32(len(payload)),
	}
	if err := binary.Write(t.enc, binary.LittleEndian, &rh); err != nil {
		return err
	}
	if _, err := t.enc.Write(eventBytes); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := t.enc.Write(payload); err != nil {
			return err
		}
	}
	t.count++
	return nil
}

// Count - сколько записей сделано.
func (t *TraceWriter) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Flush сбрасывает сжатый блок (трасса читаема даже при аварийном выходе).
func (t *TraceWriter) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrWriterClosed
	}
	return t.enc.Flush()
}

// Close завершает поток и закрывает файл, если писатель им владеет.
func (t *TraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	err := t.enc.Close()
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
