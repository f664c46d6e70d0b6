package resolver

import "github.com/quantmind-br/postinstall/internal/distro"

// overrides lists only identifiers whose concrete names diverge between
// distributions. Identifiers not present here resolve to themselves.
// A distro key mapped to nil marks the package as not applicable there;
// the anyDistro key supplies a fallback for distros not listed.
var overrides = map[string]map[distro.ID][]string{
	"base-devel": {
		distro.Arch:     {"base-devel"},
		distro.Debian:   {"build-essential"},
		distro.Ubuntu:   {"build-essential"},
		distro.Fedora:   {"gcc", "gcc-c++", "make", "automake"},
		distro.OpenSUSE: {"gcc", "gcc-c++", "make", "automake"},
	},
	"bluez-utils": {
		distro.Arch: {"bluez-utils"},
		anyDistro:   {"bluez"},
	},
	"cronie": {
		distro.Arch:     {"cronie"},
		distro.Fedora:   {"cronie"},
		distro.Debian:   {"cron"},
		distro.Ubuntu:   {"cron"},
		distro.OpenSUSE: {"cronie"},
	},
	"openssh": {
		distro.Arch:     {"openssh"},
		distro.Debian:   {"openssh-client", "openssh-server"},
		distro.Ubuntu:   {"openssh-client", "openssh-server"},
		distro.Fedora:   {"openssh", "openssh-server"},
		distro.OpenSUSE: {"openssh"},
	},
	// Arch-only tooling: no equivalent elsewhere, resolves empty there.
	"pacman-contrib": {
		distro.Arch: {"pacman-contrib"},
	},
	"reflector": {
		distro.Arch: {"reflector"},
	},
	"intel-ucode": {
		distro.Arch:     {"intel-ucode"},
		distro.Debian:   {"intel-microcode"},
		distro.Ubuntu:   {"intel-microcode"},
		distro.Fedora:   {"microcode_ctl"},
		distro.OpenSUSE: {"ucode-intel"},
	},
	"amd-ucode": {
		distro.Arch:     {"amd-ucode"},
		distro.Debian:   {"amd64-microcode"},
		distro.Ubuntu:   {"amd64-microcode"},
		distro.Fedora:   {"microcode_ctl"},
		distro.OpenSUSE: {"ucode-amd"},
	},
	"ttf-hack-nerd": {
		distro.Arch:   {"ttf-hack-nerd"},
		distro.Debian: {"fonts-hack"},
		distro.Ubuntu: {"fonts-hack"},
	},
	"ttf-liberation": {
		distro.Arch: {"ttf-liberation"},
		anyDistro:   {"liberation-fonts"},
	},
	"noto-fonts-extra": {
		distro.Arch:   {"noto-fonts-extra"},
		distro.Debian: {"fonts-noto-extra"},
		distro.Ubuntu: {"fonts-noto-extra"},
		distro.Fedora: {"google-noto-sans-fonts"},
	},
	"libreoffice-fresh": {
		distro.Arch: {"libreoffice-fresh"},
		anyDistro:   {"libreoffice"},
	},
	"eza": {
		distro.Arch:   {"eza"},
		distro.Fedora: {"eza"},
		// Not packaged in the stable Debian/Ubuntu repos.
	},
	"fastfetch": {
		distro.Arch:     {"fastfetch"},
		distro.Fedora:   {"fastfetch"},
		distro.Ubuntu:   {"fastfetch"},
		distro.OpenSUSE: {"fastfetch"},
	},
	"dnsutils": {
		distro.Arch:     {"bind"},
		distro.Debian:   {"dnsutils"},
		distro.Ubuntu:   {"dnsutils"},
		distro.Fedora:   {"bind-utils"},
		distro.OpenSUSE: {"bind-utils"},
	},
	"gufw": {
		distro.Arch:   {"gufw"},
		distro.Debian: {"gufw"},
		distro.Ubuntu: {"gufw"},
	},
	"power-profiles-daemon": {
		anyDistro: {"power-profiles-daemon"},
	},
	"docker-compose": {
		distro.Arch:   {"docker-compose"},
		distro.Fedora: {"docker-compose"},
		anyDistro:     {"docker-compose-plugin"},
	},
	"linux-headers": {
		distro.Arch:     {"linux-headers"},
		distro.Debian:   {"linux-headers-amd64"},
		distro.Ubuntu:   {"linux-headers-generic"},
		distro.Fedora:   {"kernel-devel"},
		distro.OpenSUSE: {"kernel-devel"},
	},
}
