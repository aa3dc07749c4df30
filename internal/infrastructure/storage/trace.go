package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	MagicHeader string = `BMTR` // 4 байта
	Version1    uint32 = 1
)

// TraceFileHeader - несжатый заголовок файла трассы.
// binary.Write пишет его целиком: тут только массивы и числа.
// За ним идут GameID и имя кодека (длины в заголовке), дальше zstd-поток записей.
type TraceFileHeader struct {
	Magic     [4]byte // 4 байта
	Version   uint32  // 4 байта
	Timestamp int64   // 8 байт, unix ms начала записи
	GameIDLen uint16  // 2 байта
	CodecLen  uint8   // 1 байт
	_         uint8   // выравнивание
}

// RecordHeader - заголовок каждой записи внутри сжатого потока.
type RecordHeader struct {
	OffsetMs   uint32 // 4, от начала записи
	EventLen   uint8  // 1
	_          [3]byte
	PayloadLen uint32 // 4
}

// TraceMeta - описание трассы.
type TraceMeta struct {
	GameID  string
	Codec   string
	Started time.Time
}

// TraceRecord - одно входящее событие.
type TraceRecord struct {
	Offset  time.Duration
	Event   string
	Payload []byte
}

// TraceService раскладывает трассы по каталогу.
type TraceService struct {
	SaveDir string
}

func NewTraceService(dir string) (*TraceService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &TraceService{SaveDir: dir}, nil
}

// Create открывает новый файл трассы. Файл закрывается вместе с писателем.
func (s *TraceService) Create(meta TraceMeta) (*TraceWriter, string, error) {
	if meta.Started.IsZero() {
		meta.Started = time.Now()
	}
	filename := fmt.Sprintf("trace_%s_%d.bmtr", safeName(meta.GameID), meta.Started.UnixMilli())
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	w, err := NewTraceWriter(f, meta)
	if err != nil {
		_ = f.Close()
		return nil, "", err
	}
	w.closer = f
	return w, path, nil
}

// Load читает трассу целиком.
func (s *TraceService) Load(path string) (TraceMeta, []TraceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return TraceMeta{}, nil, err
	}
	defer f.Close()

	r, err := NewTraceReader(f)
	if err != nil {
		return TraceMeta{}, nil, err
	}
	defer r.Close()

	records, err := r.ReadAll()
	return r.Meta(), records, err
}

func safeName(s string) string {
	out := []byte(s)
	for i, c := range out {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum && c != '-' && c != '_' {
			out[i] = '_'
		}
	}
	if len(out) == 0 {
		return "nogame"
	}
	return string(out)
}
