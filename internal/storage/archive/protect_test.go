package archive

import (
	"errors"
	"testing"

	"github.com/yndnr/supsim/internal/core/domain"
)

func TestCheckPassword(t *testing.T) {
	for _, kind := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(kind), func(t *testing.T) {
			spec := testSpec()
			spec.PadSize = 1024
			spec.Password = "hunter2"
			spec.Cipher = kind

			blob, err := Encode(spec)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			got, err := Decode(blob)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !got.Protected {
				t.Error("Protected = false, want true")
			}

			if err := CheckPassword(blob, "hunter2"); err != nil {
				t.Errorf("CheckPassword(correct) error = %v", err)
			}
			if err := CheckPassword(blob, "hunter3"); !errors.Is(err, domain.ErrSnapshotPassword) {
				t.Errorf("CheckPassword(wrong) error = %v, want ErrSnapshotPassword", err)
			}
			if err := CheckPassword(blob, ""); !errors.Is(err, domain.ErrSnapshotPassword) {
				t.Errorf("CheckPassword(empty) error = %v, want ErrSnapshotPassword", err)
			}
		})
	}
}

func TestCheckPassword_Unprotected(t *testing.T) {
	spec := testSpec()
	spec.PadSize = 0

	blob, err := Encode(spec)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckPassword(blob, "anything"); err != nil {
		t.Errorf("CheckPassword() on unprotected archive error = %v", err)
	}
}

func TestCheckPassword_MissingKeyCheck(t *testing.T) {
	blob := buildTar(t, map[string]string{
		"snapshot.json": `{"slug":"abcd1234","type":"full","protected":true}`,
	})
	if err := CheckPassword(blob, "x"); !errors.Is(err, domain.ErrCorruptArchive) {
		t.Errorf("CheckPassword() error = %v, want ErrCorruptArchive", err)
	}
}

func TestCheckPassword_SlugBound(t *testing.T) {
	record, err := sealKeyCheck(CipherAESGCM, "pw", "abcd1234")
	if err != nil {
		t.Fatal(err)
	}
	if err := openKeyCheck(CipherAESGCM, "pw", "abcd1234", record); err != nil {
		t.Errorf("openKeyCheck() error = %v", err)
	}
	if err := openKeyCheck(CipherAESGCM, "pw", "other123", record); !errors.Is(err, domain.ErrSnapshotPassword) {
		t.Errorf("openKeyCheck(other slug) error = %v, want ErrSnapshotPassword", err)
	}
}
