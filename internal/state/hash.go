package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// Input hashes carry an algorithm version tag so a future change of hash
// function can never silently match (or mismatch) entries written by an
// older binary: comparison is plain string equality on the tagged value,
// and a tag change forces every bound step to re-run once.
const hashVersion = "v1"

// NoHash is the sentinel recorded for steps with no bound input file.
const NoHash = "nohash"

// HashFile returns the versioned content hash of path, or NoHash when the
// file does not exist (an absent bound input is a stable state of its own).
func HashFile(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return NoHash, nil
		}
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	return hashVersion + ":" + hex.EncodeToString(sum[:]), nil
}
