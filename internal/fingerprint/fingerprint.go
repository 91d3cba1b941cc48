// Package fingerprint provides content digest implementations for the
// scanner. The digest is the catalog's dedup key, so the algorithm only
// needs collision resistance proportionate to collection size; md5 is the
// default for speed, sha1 and sha256 are available for the cautious.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/lrem/reorg/internal/ports"
)

// Default is the algorithm used when none is configured.
const Default = "md5"

type digest struct {
	name string
	mk   func() hash.Hash
}

var _ ports.Fingerprinter = digest{}

func (d digest) Name() string { return d.name }

// Sum streams r through the hash and returns the hex-encoded digest.
func (d digest) Sum(r io.Reader) (string, error) {
	h := d.mk()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// New returns the fingerprinter for the named algorithm.
func New(name string) (ports.Fingerprinter, error) {
	switch name {
	case "", Default:
		return digest{name: Default, mk: md5.New}, nil
	case "sha1":
		return digest{name: "sha1", mk: sha1.New}, nil
	case "sha256":
		return digest{name: "sha256", mk: sha256.New}, nil
	default:
		return nil, fmt.Errorf("unknown fingerprint algorithm %q", name)
	}
}
