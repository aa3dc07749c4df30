package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
)

// maxPayload - защита от битого файла.
const maxPayload = 64 << 20

// TraceReader читает трассу запись за записью.
type TraceReader struct {
	meta TraceMeta
	dec  *zstd.Decoder
}

func NewTraceReader(r io.Reader) (*TraceReader, error) {
	// 1. Читаем заголовок целиком
	var header TraceFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic")
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}

	gameID := make([]byte, header.GameIDLen)
	if _, err := io.ReadFull(r, gameID); err != nil {
		return nil, fmt.Errorf("failed to read game id: %w", err)
	}
	codec := make([]byte, header.CodecLen)
	if _, err := io.ReadFull(r, codec); err != nil {
		return nil, fmt.Errorf("failed to read codec: %w", err)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &TraceReader{
		meta: TraceMeta{
			GameID:  string(gameID),
			Codec:   string(codec),
			Started: time.UnixMilli(header.Timestamp),
		},
		dec: dec,
	}, nil
}

func (t *TraceReader) Meta() TraceMeta { return t.meta }

// Next возвращает следующую запись или io.EOF.
func (t *TraceReader) Next() (TraceRecord, error) {
	var rh RecordHeader
	if err := binary.Read(t.dec, binary.LittleEndian, &rh); err != nil {
		if errors.Is(err, io.EOF) {
			return TraceRecord{}, io.EOF
		}
		return TraceRecord{}, fmt.Errorf("read record header: %w", err)
	}
	if rh.PayloadLen > maxPayload {
		return TraceRecord{}, fmt.Errorf("payload too long: %d", rh.PayloadLen)
	}

	event := make([]byte, rh.EventLen)
	if _, err := io.ReadFull(t.dec, event); err != nil {
		return TraceRecord{}, fmt.Errorf("read event: %w", err)
	}
	rec := TraceRecord{
		Offset: time.Duration(rh.OffsetMs) * time.Millisecond,
		Event:  string(event),
	}
	if rh.PayloadLen > 0 {
		rec.Payload = make([]byte, rh.PayloadLen)
		if _, err := io.ReadFull(t.dec, rec.Payload); err != nil {
			return TraceRecord{}, fmt.Errorf("read payload: %w", err)
		}
	}
	return rec, nil
}

// ReadAll читает все оставшиеся записи.
func (t *TraceReader) ReadAll() ([]TraceRecord, error) {
	var out []TraceRecord
	for {
		rec, err := t.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func (t *TraceReader) Close() {
	t.dec.Close()
}
