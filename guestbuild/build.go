// Package guestbuild compiles guest programs into executables the host
// can load. It validates the guest directory, infers the binary name from
// the project descriptor, drives the external build command, and locates
// the produced executable, reporting each failure as one of three named
// conditions.
package guestbuild

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zkrail/zkrail/log"
)

// targetTriple is the cross-compilation target guests are built for.
const targetTriple = "riscv32im-risc0-zkvm-elf"

// descriptorFile is the project descriptor a guest directory must carry.
const descriptorFile = "Cargo.toml"

// buildErrorTail is how many trailing output lines a build failure
// message carries.
const buildErrorTail = 10

// CommandRunner runs one external command in a directory and returns its
// combined output. The default runner shells out; tests substitute their
// own.
type CommandRunner interface {
	Run(dir, name string, args ...string) ([]byte, error)
}

// execRunner is the default CommandRunner.
type execRunner struct{}

func (execRunner) Run(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Config holds build options.
type Config struct {
	// BinaryName overrides binary-name inference from the descriptor.
	BinaryName string

	// Descriptor overrides the project descriptor file name. Empty means
	// Cargo.toml.
	Descriptor string

	// Release selects the release profile. Debug builds land in the
	// debug output directory instead.
	Release bool

	// Clean runs a clean step before building so stale artifacts never
	// satisfy the search.
	Clean bool

	// Runner executes the build commands. Nil means the real toolchain.
	Runner CommandRunner
}

// DefaultConfig returns the default build options: a clean release build
// with the binary name read from the descriptor.
func DefaultConfig() Config {
	return Config{Release: true, Clean: true}
}

// Builder compiles guest directories into executables.
type Builder struct {
	cfg    Config
	runner CommandRunner
	log    *log.Logger
}

// New creates a Builder with the given options.
func New(cfg Config) *Builder {
	runner := cfg.Runner
	if runner == nil {
		runner = execRunner{}
	}
	return &Builder{
		cfg:    cfg,
		runner: runner,
		log:    log.Default().Module("guestbuild"),
	}
}

// cargoManifest is the slice of the descriptor the builder reads.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Bin []struct {
		Name string `toml:"name"`
	} `toml:"bin"`
}

// Build compiles the guest in guestDir with the given options and
// returns the path of the produced executable.
func Build(guestDir string, cfg Config) (string, error) {
	return New(cfg).Build(guestDir)
}

// Build compiles the guest in guestDir and returns the path of the
// produced executable.
func (b *Builder) Build(guestDir string) (string, error) {
	info, err := os.Stat(guestDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s does not exist", ErrInvalidGuestDir, guestDir)
	}
	descName := b.cfg.Descriptor
	if descName == "" {
		descName = descriptorFile
	}
	descriptor := filepath.Join(guestDir, descName)
	if _, err := os.Stat(descriptor); err != nil {
		return "", fmt.Errorf("%w: no %s in %s", ErrInvalidGuestDir, descName, guestDir)
	}

	name := b.cfg.BinaryName
	if name == "" {
		if name, err = inferBinaryName(descriptor); err != nil {
			return "", err
		}
	}

	if b.cfg.Clean {
		if out, err := b.runner.Run(guestDir, "cargo", "clean"); err != nil {
			b.log.Debug("clean step failed", "dir", guestDir, "output", lastLines(out, buildErrorTail))
		}
	}

	args := []string{"+risc0", "build", "--target", targetTriple}
	if b.cfg.Release {
		args = append(args, "--release")
	}
	b.log.Info("building guest", "dir", guestDir, "binary", name, "release", b.cfg.Release)
	out, err := b.runner.Run(guestDir, "cargo", args...)
	if err != nil {
		if tail := lastLines(out, buildErrorTail); tail != "" {
			return "", fmt.Errorf("%w: %v\n%s", ErrBuildFailed, err, tail)
		}
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	return b.findELF(guestDir, name)
}

// findELF locates the built executable, trying the dash/underscore
// alternates of the binary name before giving up with a message that
// names every searched location and anything present instead.
func (b *Builder) findELF(guestDir, name string) (string, error) {
	profile := "debug"
	if b.cfg.Release {
		profile = "release"
	}
	outDir := filepath.Join(guestDir, "target", targetTriple, profile)

	elf := filepath.Join(outDir, name)
	if isFile(elf) {
		return elf, nil
	}

	searched := []string{elf}
	for _, alt := range alternateNames(name) {
		altPath := filepath.Join(outDir, alt)
		if isFile(altPath) {
			b.log.Warn("executable found under alternate name", "expected", name, "found", alt)
			return altPath, nil
		}
		searched = append(searched, altPath)
	}

	msg := fmt.Sprintf("searched %s", strings.Join(searched, ", "))
	if entries, err := os.ReadDir(outDir); err != nil {
		msg += "; output directory does not exist, the build produced nothing"
	} else if found := entryNames(entries, 5); len(found) > 0 {
		msg += "; found instead: " + strings.Join(found, ", ")
	} else {
		msg += "; output directory is empty"
	}
	return "", fmt.Errorf("%w: %s", ErrELFNotFound, msg)
}

// inferBinaryName reads the descriptor and returns the first [[bin]]
// name, falling back to the package name with dashes mapped to
// underscores the way the build tool does.
func inferBinaryName(descriptor string) (string, error) {
	data, err := os.ReadFile(descriptor)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrInvalidGuestDir, descriptor, err)
	}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("%w: malformed %s: %v", ErrInvalidGuestDir, descriptor, err)
	}
	if len(manifest.Bin) > 0 && manifest.Bin[0].Name != "" {
		return manifest.Bin[0].Name, nil
	}
	if manifest.Package.Name != "" {
		return strings.ReplaceAll(manifest.Package.Name, "-", "_"), nil
	}
	return "", fmt.Errorf("%w: %s names no package or binary", ErrInvalidGuestDir, descriptor)
}

// alternateNames returns the dash/underscore variants of name, excluding
// name itself.
func alternateNames(name string) []string {
	var alts []string
	for _, alt := range []string{
		strings.ReplaceAll(name, "_", "-"),
		strings.ReplaceAll(name, "-", "_"),
	} {
		if alt != name {
			alts = append(alts, alt)
		}
	}
	return alts
}

// lastLines returns the last n lines of command output, trimmed.
func lastLines(out []byte, n int) string {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// entryNames lists up to max entry names of a directory listing.
func entryNames(entries []os.DirEntry, max int) []string {
	names := make([]string, 0, min(len(entries), max))
	for _, e := range entries {
		if len(names) == max {
			break
		}
		names = append(names, e.Name())
	}
	return names
}

// isFile reports whether path exists and is a regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
