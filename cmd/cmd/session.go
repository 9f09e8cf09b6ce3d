package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nightlyone/lockfile"
	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/drivers"
	"github.com/ostafen/partedit/internal/label"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/sectorio"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var log = logger.New(os.Stderr, logger.InfoLevel)

// debugLogger is initialized once, per spec.md §9's instruction to keep the
// process-wide debug mask "behind a process-wide initialization routine
// whose lifecycle is (init once, never change, never tear down)". Setting
// PARTEDIT_DEBUG enables slog.LevelDebug records of the engine's tolerated
// soft failures (bad EBR magic, GPT checksum fallbacks, ...) to stderr;
// unset, engine diagnostics are only ever surfaced through the ask channel.
var debugLogger = newDebugLogger()

func newDebugLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("PARTEDIT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// sessionLocale is resolved once at startup from the process environment,
// the same "init once, never change" lifecycle as debugLogger. It is
// stamped onto every ask.Request the engine builds (label.Context.Dispatch)
// so stdinAsk can render its prompts in the session's language.
var sessionLocale = resolveLocale()

func resolveLocale() language.Tag {
	for _, name := range []string{"LC_ALL", "LANG"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		v = strings.SplitN(v, ".", 2)[0] // drop a trailing ".UTF-8"
		if tag, err := language.Parse(v); err == nil {
			return tag
		}
	}
	return language.English
}

// localizedYesNo returns the bracketed hint stdinAsk prints for a KindYesNo
// prompt and the set of words it accepts as an affirmative answer, chosen
// by loc's base language. Unrecognized languages fall back to English.
func localizedYesNo(loc language.Tag) (hint string, affirmative []string) {
	base, _ := loc.Base()
	switch base.String() {
	case "es":
		return "[s/N]", []string{"s", "si", "sí"}
	case "fr":
		return "[o/N]", []string{"o", "oui"}
	case "de":
		return "[j/N]", []string{"j", "ja"}
	default:
		return "[y/N]", []string{"y", "yes"}
	}
}

// sessionFlags bundles the persistent device-session flags every
// device-touching subcommand shares.
type sessionFlags struct {
	readOnly   bool
	sectorSize uint64
	lockMode   string
	zero       bool
}

func readSessionFlags(cmd *cobra.Command) (sessionFlags, error) {
	readOnly, _ := cmd.Flags().GetBool("read-only")
	sectorSize, _ := cmd.Flags().GetUint64("sector-size")
	lockMode, _ := cmd.Flags().GetString("lock")
	zero, _ := cmd.Flags().GetBool("zero")

	switch lockMode {
	case "yes", "no", "nonblock":
	default:
		return sessionFlags{}, perr.New(perr.InvalidArgument, "invalid --lock value %q", lockMode)
	}
	switch sectorSize {
	case 0, 512, 1024, 2048, 4096:
	default:
		return sessionFlags{}, perr.New(perr.InvalidArgument, "invalid --sector-size value %d", sectorSize)
	}

	return sessionFlags{readOnly: readOnly, sectorSize: sectorSize, lockMode: lockMode, zero: zero}, nil
}

// acquireLock takes an advisory lock guarding devicePath for the session's
// duration, mirroring clr-installer's lockfile.New/TryLock/Unlock pattern.
// The lock is an opaque collaborator: the engine never inspects what holds
// it, only whether TryLock succeeds.
func acquireLock(devicePath, mode string) (func(), error) {
	if mode == "no" {
		return func() {}, nil
	}

	abs, err := filepath.Abs(devicePath)
	if err != nil {
		return nil, perr.Wrap(perr.IOError, err, "resolving %s", devicePath)
	}
	lock, err := lockfile.New(abs + ".partedit.lock")
	if err != nil {
		return nil, perr.Wrap(perr.IOError, err, "building lockfile for %s", devicePath)
	}
	if err := lock.TryLock(); err != nil {
		return nil, perr.Wrap(perr.BusyInUse, err, "device %s is locked", devicePath)
	}
	return func() { _ = lock.Unlock() }, nil
}

// openDevice resolves a subcommand's session flags, takes the advisory
// lock, and opens devicePath, returning a cleanup func that releases both
// the device and the lock.
func openDevice(cmd *cobra.Command, devicePath string) (*sectorio.Device, sessionFlags, func(), error) {
	flags, err := readSessionFlags(cmd)
	if err != nil {
		return nil, sessionFlags{}, nil, err
	}

	unlock, err := acquireLock(devicePath, flags.lockMode)
	if err != nil {
		return nil, sessionFlags{}, nil, err
	}

	dev, err := sectorio.Open(devicePath, flags.readOnly)
	if err != nil {
		unlock()
		return nil, sessionFlags{}, nil, err
	}
	if flags.sectorSize != 0 {
		dev.LogicalSectorSize = flags.sectorSize
	}

	cleanup := func() {
		_ = dev.Close()
		unlock()
	}
	return dev, flags, cleanup, nil
}

// newContext builds a label.Context wired to the shipped driver registry
// and a stdin-backed ask callback.
func newContext(dev *sectorio.Device, readOnly bool) *label.Context {
	ctx := label.NewContext(dev, readOnly, drivers.NewRegistry())
	ctx.Ask = stdinAsk
	ctx.Logger = debugLogger
	ctx.Locale = sessionLocale
	return ctx
}

// stdinAsk implements ask.Callback for a non-interactive session: prompts
// go to stderr, answers come from stdin. It is the minimal host a scripted
// CLI invocation can supply to satisfy internal/ask's dialog protocol,
// standing in for the full-screen dialogs a curses front end would draw.
func stdinAsk(req *ask.Request) error {
	reader := bufio.NewReader(os.Stdin)

	switch req.Kind {
	case ask.KindInfo, ask.KindWarn:
		fmt.Fprintln(os.Stderr, req.Message)
		return nil
	case ask.KindWarnErrno:
		fmt.Fprintf(os.Stderr, "%s: %v\n", req.Message, req.Err)
		return nil
	case ask.KindYesNo:
		hint, affirmative := localizedYesNo(req.Locale)
		fmt.Fprintf(os.Stderr, "%s %s: ", req.Query, hint)
		line, _ := reader.ReadString('\n')
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			req.Cancel()
			return nil
		}
		answered := false
		for _, word := range affirmative {
			if line == word {
				answered = true
				break
			}
		}
		req.SetYesNo(answered)
		return nil
	case ask.KindString:
		fmt.Fprintf(os.Stderr, "%s: ", req.Query)
		line, _ := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n")
		if line == "" {
			req.Cancel()
			return nil
		}
		req.SetString(line)
		return nil
	case ask.KindNumber:
		fmt.Fprintf(os.Stderr, "%s [%d-%d, default %d]: ", req.Query, req.Low, req.High, req.Default)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			req.SetNumber(req.Default)
			return nil
		}
		n, err := strconv.ParseInt(line, 0, 64)
		if err != nil {
			req.Cancel()
			return nil
		}
		req.SetNumber(n)
		return nil
	case ask.KindMenu:
		fmt.Fprintln(os.Stderr, req.Query)
		for _, item := range req.Items {
			fmt.Fprintf(os.Stderr, "  %s) %s - %s\n", item.Key, item.Name, item.Description)
		}
		fmt.Fprintf(os.Stderr, "choice [%s]: ", req.DefaultKey)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			line = req.DefaultKey
		}
		req.SetMenuKey(line)
		return nil
	default:
		return perr.New(perr.Unsupported, "unhandled ask kind %s", req.Kind)
	}
}
