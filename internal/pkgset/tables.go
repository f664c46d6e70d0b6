package pkgset

import (
	"github.com/quantmind-br/postinstall/internal/core"
	"github.com/quantmind-br/postinstall/internal/distro"
)

// listKey addresses one raw identifier list. Identifiers are
// distribution-agnostic; the resolver turns them into concrete names.
type listKey struct {
	section string
	backend core.Backend
	mode    core.Mode
}

// Section names used by the step definitions.
const (
	SectionCore      = "core"
	SectionSystem    = "system"
	SectionEssential = "essential"
	SectionGaming    = "gaming"
	SectionAUR       = "aur"
	SectionFlatpak   = "flatpak"
	SectionSnap      = "snap"
	SectionShell     = "shell"
	SectionPrompt    = "prompt"
)

var table = map[listKey][]string{
	// Helper utilities installed before anything else; identical in both modes.
	{SectionCore, core.BackendNative, core.ModeDefault}: coreUtilities,
	{SectionCore, core.BackendNative, core.ModeMinimal}: coreUtilities,

	{SectionSystem, core.BackendNative, core.ModeDefault}: {
		"android-tools", "bat", "bleachbit", "btop", "bluez-utils", "cmatrix",
		"dmidecode", "dosfstools", "fastfetch", "firefox", "fwupd",
		"gnome-disk-utility", "hwinfo", "inxi", "net-tools", "noto-fonts-extra",
		"ntfs-3g", "samba", "speedtest-cli", "sshfs", "ttf-hack-nerd",
		"ttf-liberation", "unrar", "wget", "xdg-desktop-portal-gtk",
	},
	{SectionSystem, core.BackendNative, core.ModeMinimal}: {
		"bat", "btop", "bluez-utils", "dmidecode", "dosfstools", "fastfetch",
		"firefox", "fwupd", "hwinfo", "inxi", "net-tools", "ntfs-3g",
		"ttf-hack-nerd", "ttf-liberation", "unrar", "wget",
	},

	{SectionEssential, core.BackendNative, core.ModeDefault}: {
		"discord", "filezilla", "gimp", "kdenlive", "libreoffice-fresh",
		"obs-studio", "telegram-desktop", "timeshift", "vlc",
	},
	{SectionEssential, core.BackendNative, core.ModeMinimal}: {
		"libreoffice-fresh", "timeshift", "vlc",
	},

	{SectionGaming, core.BackendNative, core.ModeDefault}: {
		"gamemode", "mangohud", "lutris", "steam", "wine",
	},

	{SectionShell, core.BackendNative, core.ModeDefault}: shellPackages,
	{SectionShell, core.BackendNative, core.ModeMinimal}: shellPackages,

	{SectionPrompt, core.BackendNative, core.ModeDefault}: {"starship"},
	{SectionPrompt, core.BackendNative, core.ModeMinimal}: {"starship"},

	{SectionAUR, core.BackendAUR, core.ModeDefault}: {
		"brave-bin", "heroic-games-launcher-bin", "megasync-bin", "spotify",
		"stacer-bin", "stremio", "teamviewer", "via-bin",
	},
	{SectionAUR, core.BackendAUR, core.ModeMinimal}: {
		"brave-bin", "stacer-bin", "stremio", "teamviewer",
	},

	{SectionSnap, core.BackendSnap, core.ModeDefault}: {
		"spotify", "discord",
	},
}

var coreUtilities = []string{
	"base-devel", "bluez-utils", "cronie", "curl", "eza", "fastfetch",
	"figlet", "fzf", "git", "openssh", "pacman-contrib", "reflector",
	"rsync", "ufw", "zoxide",
}

var shellPackages = []string{
	"zsh", "zsh-autosuggestions", "zsh-syntax-highlighting",
}

// Desktop-specific native package lists, default mode only; minimal
// installs no desktop extras (matching the upstream behavior).
var desktopInstall = map[distro.Desktop][]string{
	distro.KDE: {
		"gwenview", "kdeconnect", "kwalletmanager", "okular",
		"power-profiles-daemon", "qbittorrent", "spectacle",
	},
	distro.GNOME: {
		"celluloid", "dconf-editor", "gnome-tweaks", "gufw", "seahorse",
		"transmission-gtk",
	},
	distro.COSMIC: {
		"power-profiles-daemon", "transmission-gtk",
	},
}

// Packages the desktop environment ships that this setup replaces.
var desktopRemove = map[distro.Desktop][]string{
	distro.KDE:    {"htop"},
	distro.GNOME:  {"epiphany", "gnome-contacts", "gnome-maps", "gnome-music", "gnome-tour", "htop", "totem"},
	distro.COSMIC: {"htop"},
}

var flatpakLists = map[core.Mode]map[distro.Desktop][]string{
	core.ModeDefault: {
		distro.KDE:     {"io.github.shiftey.Desktop", "it.mijorus.gearlever", "net.davidotek.pupgui2"},
		distro.GNOME:   {"com.mattjakeman.ExtensionManager", "io.github.shiftey.Desktop", "it.mijorus.gearlever", "com.vysp3r.ProtonPlus"},
		distro.COSMIC:  {"io.github.shiftey.Desktop", "it.mijorus.gearlever", "com.vysp3r.ProtonPlus", "dev.edfloreshz.CosmicTweaks"},
		distro.Generic: {"it.mijorus.gearlever"},
	},
	core.ModeMinimal: {
		distro.KDE:     {"it.mijorus.gearlever"},
		distro.GNOME:   {"com.mattjakeman.ExtensionManager", "it.mijorus.gearlever"},
		distro.COSMIC:  {"it.mijorus.gearlever", "dev.edfloreshz.CosmicTweaks"},
		distro.Generic: {"it.mijorus.gearlever"},
	},
}

// Lookup returns the raw identifier list for (section, backend) under mode.
// The boolean reports whether the group is declared at all.
func Lookup(section string, b core.Backend, m core.Mode) ([]string, bool) {
	ids, ok := table[listKey{section, b, m}]
	return ids, ok
}

// DesktopPackages returns the native install list for a desktop
// environment; empty in minimal mode.
func DesktopPackages(d distro.Desktop, m core.Mode) []string {
	if m == core.ModeMinimal {
		return nil
	}
	return desktopInstall[d]
}

// DesktopRemovals returns packages to uninstall for a desktop environment.
func DesktopRemovals(d distro.Desktop) []string {
	return desktopRemove[d]
}

// FlatpakApps returns the Flathub application IDs for a desktop under mode.
func FlatpakApps(d distro.Desktop, m core.Mode) []string {
	lists, ok := flatpakLists[m]
	if !ok {
		return nil
	}
	if apps, ok := lists[d]; ok {
		return apps
	}
	return lists[distro.Generic]
}
