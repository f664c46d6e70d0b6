package distro

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// ID identifies a supported distribution family. The set is closed:
// everything downstream (name resolution, backend selection) switches on it.
type ID string

const (
	Arch     ID = "arch"
	Debian   ID = "debian"
	Ubuntu   ID = "ubuntu"
	Fedora   ID = "fedora"
	OpenSUSE ID = "opensuse"
	Unknown  ID = "unknown"
)

// Desktop identifies the running desktop environment, used only to pick
// package groups. Anything unrecognized collapses to Generic.
type Desktop string

const (
	KDE     Desktop = "kde"
	GNOME   Desktop = "gnome"
	COSMIC  Desktop = "cosmic"
	Generic Desktop = "generic"
)

const osReleasePath = "/etc/os-release"

// Detect resolves the distribution ID from /etc/os-release. Derivatives
// fall back to ID_LIKE so e.g. Manjaro and EndeavourOS map to Arch.
func Detect(fs afero.Fs) (ID, error) {
	data, err := afero.ReadFile(fs, osReleasePath)
	if err != nil {
		return Unknown, err
	}
	return parseOSRelease(data), nil
}

func parseOSRelease(data []byte) ID {
	var id, idLike string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "ID="):
			id = unquote(strings.TrimPrefix(line, "ID="))
		case strings.HasPrefix(line, "ID_LIKE="):
			idLike = unquote(strings.TrimPrefix(line, "ID_LIKE="))
		}
	}

	if d := matchID(id); d != Unknown {
		return d
	}
	for _, like := range strings.Fields(idLike) {
		if d := matchID(like); d != Unknown {
			return d
		}
	}
	return Unknown
}

func matchID(id string) ID {
	switch strings.ToLower(id) {
	case "arch", "archarm":
		return Arch
	case "debian":
		return Debian
	case "ubuntu":
		return Ubuntu
	case "fedora":
		return Fedora
	case "opensuse", "opensuse-tumbleweed", "opensuse-leap", "suse":
		return OpenSUSE
	default:
		return Unknown
	}
}

func unquote(s string) string {
	return strings.Trim(s, `"'`)
}

// DetectDesktop inspects XDG_CURRENT_DESKTOP. The variable can hold a
// colon-separated list (e.g. "ubuntu:GNOME"), so match on substrings.
func DetectDesktop() Desktop {
	de := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))
	switch {
	case strings.Contains(de, "kde"):
		return KDE
	case strings.Contains(de, "gnome"):
		return GNOME
	case strings.Contains(de, "cosmic"):
		return COSMIC
	default:
		return Generic
	}
}

// Supported reports whether the distribution is one the installer can drive.
func Supported(id ID) bool {
	return id != Unknown
}
