package archive

import (
	"archive/tar"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/supsim/internal/core/domain"
)

// Entry names.
const (
	MetadataName = "./snapshot.json"
	KeyCheckName = "./protected.bin"
	PaddingName  = "./padding.bin"
)

const (
	// HeaderReserve is the most Encode adds on top of PadSize for tar
	// headers, metadata and the key-check record.
	HeaderReserve = 64 << 10

	checksumRecord  = "SUPSIM.checksum"
	maxMetadataSize = 32 << 10
	homeAssistantV  = "2024.1.0"
)

// Spec describes the archive to build.
type Spec struct {
	Slug     string
	Name     string
	Date     time.Time
	Type     domain.SnapshotType
	PadSize  int64
	Folders  []string
	Addons   []string
	Password string

	// Cipher selects the key-check AEAD; empty picks one for the host.
	Cipher CipherType
}

type metadata struct {
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	Date          string     `json:"date"`
	Type          string     `json:"type"`
	Protected     bool       `json:"protected"`
	Crypto        string     `json:"crypto,omitempty"`
	Folders       []string   `json:"folders"`
	Addons        []addonRef `json:"addons"`
	HomeAssistant *haRef     `json:"homeassistant,omitempty"`
}

type haRef struct {
	Version string `json:"version"`
}

// addonRef is an add-on manifest entry. Other producers write bare slugs,
// so both forms are accepted.
type addonRef struct {
	Slug    string `json:"slug"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

func (a *addonRef) UnmarshalJSON(data []byte) error {
	var slug string
	if err := json.Unmarshal(data, &slug); err == nil {
		a.Slug = slug
		return nil
	}
	type plain addonRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = addonRef(p)
	return nil
}

// Encode builds the archive described by spec.
func Encode(spec Spec) ([]byte, error) {
	if spec.Slug == "" {
		return nil, domain.ErrBadRequest.WithDetails("archive slug is required")
	}
	if spec.PadSize < 0 {
		return nil, domain.ErrBadRequest.WithDetails("negative pad size")
	}
	if spec.Type == "" {
		spec.Type = inferType(spec.Folders, spec.Addons)
	}

	meta := metadata{
		Slug:          spec.Slug,
		Name:          spec.Name,
		Date:          spec.Date.UTC().Format(time.RFC3339Nano),
		Type:          string(spec.Type),
		Protected:     spec.Password != "",
		Folders:       nonNil(spec.Folders),
		Addons:        make([]addonRef, 0, len(spec.Addons)),
		HomeAssistant: &haRef{Version: homeAssistantV},
	}
	for _, slug := range spec.Addons {
		meta.Addons = append(meta.Addons, addonRef{Slug: slug, Name: slug, Version: "1.0"})
	}

	var keyCheck []byte
	if meta.Protected {
		kind := spec.Cipher
		if kind == "" {
			kind = DefaultCipher()
		}
		var err error
		keyCheck, err = sealKeyCheck(kind, spec.Password, spec.Slug)
		if err != nil {
			return nil, fmt.Errorf("archive: seal key check: %w", err)
		}
		meta.Crypto = string(kind)
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal metadata: %w", err)
	}
	if len(metaJSON) > maxMetadataSize {
		return nil, domain.ErrBadRequest.WithDetails("snapshot metadata too large")
	}

	var buf bytes.Buffer
	buf.Grow(int(spec.PadSize) + HeaderReserve)
	tw := tar.NewWriter(&buf)

	hdr := &tar.Header{
		Typeflag:   tar.TypeReg,
		Name:       MetadataName,
		Mode:       0o644,
		Size:       int64(len(metaJSON)),
		ModTime:    spec.Date,
		Format:     tar.FormatPAX,
		PAXRecords: map[string]string{checksumRecord: checksum(metaJSON)},
	}
	if err := writeEntry(tw, hdr, bytes.NewReader(metaJSON)); err != nil {
		return nil, err
	}

	if keyCheck != nil {
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     KeyCheckName,
			Mode:     0o600,
			Size:     int64(len(keyCheck)),
			ModTime:  spec.Date,
		}
		if err := writeEntry(tw, hdr, bytes.NewReader(keyCheck)); err != nil {
			return nil, err
		}
	}

	hdr = &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     PaddingName,
		Mode:     0o644,
		Size:     spec.PadSize,
		ModTime:  spec.Date,
	}
	if err := writeEntry(tw, hdr, newFiller(spec.Slug, spec.PadSize)); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("archive: close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses an archive and returns its snapshot metadata, with Size
// set to len(blob). Unparseable input yields domain.ErrCorruptArchive.
func Decode(blob []byte) (*domain.Snapshot, error) {
	meta, _, err := scan(blob)
	if err != nil {
		return nil, err
	}

	s := &domain.Snapshot{
		Slug:      meta.Slug,
		Name:      meta.Name,
		Type:      domain.SnapshotType(meta.Type),
		Size:      int64(len(blob)),
		Protected: meta.Protected,
		Folders:   nonNil(meta.Folders),
		Addons:    make([]string, 0, len(meta.Addons)),
	}
	for _, a := range meta.Addons {
		s.Addons = append(s.Addons, a.Slug)
	}
	if s.Type == "" {
		s.Type = inferType(s.Folders, s.Addons)
	}
	if meta.Date != "" {
		date, err := time.Parse(time.RFC3339Nano, meta.Date)
		if err != nil {
			return nil, domain.ErrCorruptArchive.WithDetails("invalid date").WithCause(err)
		}
		s.Date = date
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// CheckPassword verifies password against a protected archive. It is a
// no-op for unprotected archives.
func CheckPassword(blob []byte, password string) error {
	meta, keyCheck, err := scan(blob)
	if err != nil {
		return err
	}
	if !meta.Protected {
		return nil
	}
	if keyCheck == nil {
		return domain.ErrCorruptArchive.WithDetails("protected archive without key check")
	}
	return openKeyCheck(CipherType(meta.Crypto), password, meta.Slug, keyCheck)
}

// scan walks every entry so truncated streams are rejected.
func scan(blob []byte) (*metadata, []byte, error) {
	if len(blob) == 0 {
		return nil, nil, domain.ErrCorruptArchive.WithDetails("empty archive")
	}

	var (
		meta     *metadata
		keyCheck []byte
	)
	tr := tar.NewReader(bytes.NewReader(blob))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, domain.ErrCorruptArchive.WithDetails("invalid tar stream").WithCause(err)
		}

		switch entryName(hdr.Name) {
		case "snapshot.json", "backup.json":
			data, err := readLimited(tr, maxMetadataSize)
			if err != nil {
				return nil, nil, err
			}
			if sum, ok := hdr.PAXRecords[checksumRecord]; ok && sum != checksum(data) {
				return nil, nil, domain.ErrCorruptArchive.WithDetails("metadata checksum mismatch")
			}
			var m metadata
			if err := json.Unmarshal(data, &m); err != nil {
				return nil, nil, domain.ErrCorruptArchive.WithDetails("invalid metadata").WithCause(err)
			}
			meta = &m
		case "protected.bin":
			data, err := readLimited(tr, 1024)
			if err != nil {
				return nil, nil, err
			}
			keyCheck = data
		default:
			if _, err := io.Copy(io.Discard, tr); err != nil {
				return nil, nil, domain.ErrCorruptArchive.WithDetails("truncated entry").WithCause(err)
			}
		}
	}

	if meta == nil {
		return nil, nil, domain.ErrCorruptArchive.WithDetails("missing snapshot.json")
	}
	return meta, keyCheck, nil
}

func entryName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, domain.ErrCorruptArchive.WithDetails("truncated entry").WithCause(err)
	}
	if int64(len(data)) > limit {
		return nil, domain.ErrCorruptArchive.WithDetails("entry too large")
	}
	return data, nil
}

func writeEntry(tw *tar.Writer, hdr *tar.Header, body io.Reader) error {
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("archive: write header %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(tw, body); err != nil {
		return fmt.Errorf("archive: write %s: %w", hdr.Name, err)
	}
	return nil
}

func checksum(data []byte) string {
	h1, h2 := murmur3.Sum128(data)
	var sum [16]byte
	for i := 0; i < 8; i++ {
		sum[i] = byte(h1 >> (56 - 8*i))
		sum[8+i] = byte(h2 >> (56 - 8*i))
	}
	return hex.EncodeToString(sum[:])
}

func inferType(folders, addons []string) domain.SnapshotType {
	if len(folders) == 0 && len(addons) == 0 {
		return domain.SnapshotFull
	}
	return domain.SnapshotPartial
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
