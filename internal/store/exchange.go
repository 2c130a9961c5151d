package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/jsonc"

	"github.com/diogenes-ai-code/gtadmin/internal/errors"
	"github.com/diogenes-ai-code/gtadmin/internal/models"
	"github.com/diogenes-ai-code/gtadmin/internal/seed"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Encoders and decoders are safe for concurrent use, so one of each is shared.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// ExportFileName returns the download name of an export made at now.
func ExportFileName(now time.Time, compressed bool) string {
	name := fmt.Sprintf("gerustthuis-admin-%s.json", now.Format("2006-01-02"))
	if compressed {
		name += ".zst"
	}
	return name
}

// ExportBytes serializes the whole store as indented JSON.
func (s *Store) ExportBytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return nil, errors.WrapInternal(err, "failed to encode export")
	}
	return data, nil
}

// Export writes the store as an indented JSON document.
func (s *Store) Export(w io.Writer) error {
	data, err := s.ExportBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ExportCompressed writes the export document as a zstd frame.
func (s *Store) ExportCompressed(w io.Writer) error {
	data, err := s.ExportBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(Compress(data))
	return err
}

// Compress wraps an export document in a zstd frame.
func Compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

// Import replaces the whole store with the given export document. The
// document may be zstd-compressed and may contain JSONC comments and
// trailing commas. A document without project or phases is ignored and
// reports false with no error. Malformed documents and invalid entities
// report false with an InvalidArgs error. The store is unchanged whenever
// false is returned.
func (s *Store) Import(data []byte) (bool, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		decoded, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return false, errors.InvalidArgs("failed to decompress import: %v", err)
		}
		data = decoded
	}
	data = jsonc.ToJSON(data)

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return false, errors.InvalidArgs("import is not a JSON object: %v", err)
	}
	if isNull(shape["project"]) || isNull(shape["phases"]) {
		s.logger.Warn("import ignored: document needs project and phases")
		return false, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, errors.InvalidArgs("failed to decode import: %v", err)
	}
	if err := snap.CheckEntries(); err != nil {
		return false, errors.InvalidArgs("invalid import: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lastID := s.lastID
	applied := s.migrate(&snap)
	if err := snap.Validate(); err != nil {
		s.lastID = lastID
		return false, errors.InvalidArgs("invalid import: %v", err)
	}

	s.replaceLocked(&snap)
	s.logger.Info("store imported", "phases", len(snap.Phases), "tickets", len(snap.Tickets), "migrated", applied)
	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Reset restores the seed project plan.
func (s *Store) Reset() error {
	snap, err := seed.Dataset()
	if err != nil {
		return errors.WrapInternal(err, "failed to load seed data")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.migrate(snap)
	s.replaceLocked(snap)
	s.logger.Info("store reset to seed data")
	return s.persistLocked()
}
