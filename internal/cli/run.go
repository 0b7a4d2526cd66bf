package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/calvinalkan/todo/internal/app"
	"github.com/calvinalkan/todo/internal/config"
	"github.com/calvinalkan/todo/internal/kv"
	"github.com/calvinalkan/todo/internal/notify"
	"github.com/calvinalkan/todo/internal/task"
)

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
// sigCh may be nil; a signal on it cancels the running command.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < 2 {
		printUsage(out, nil)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out, nil)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(out, nil)

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		Overrides:       config.Overrides{DataDir: flags.dataDir, Backend: flags.backend},
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	logger := newLogger(errOut, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	sess := &session{cfg: cfg, log: logger}
	defer sess.Close()

	commands := allCommands(sess, stdin)

	for _, cmd := range commands {
		if !cmd.Matches(name) {
			continue
		}

		o := NewIO(stdin, out, errOut)

		code := cmd.Run(ctx, o, flags.remaining[1:])
		if code != 0 {
			return code
		}

		return o.Finish()
	}

	fprintln(errOut, "error: unknown command:", name)
	printUsage(errOut, commands)

	return 1
}

func allCommands(sess *session, stdin io.Reader) []*Command {
	return []*Command{
		AddCmd(sess),
		EditCmd(sess),
		ToggleCmd(sess),
		ShowCmd(sess),
		RmCmd(sess),
		ClearCmd(sess),
		LsCmd(sess),
		StatsCmd(sess),
		ShellCmd(sess, stdin),
		PrintConfigCmd(sess),
	}
}

// session owns the resources shared by the commands of one invocation.
// Storage is opened on first use so help and print-config never touch it.
type session struct {
	cfg config.Config
	log *zap.Logger

	kv  kv.Store
	app *app.App
}

// App opens the configured backend, loads the task list and returns the
// controller core.
func (s *session) App(ctx context.Context) (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}

	backend, err := kv.Open(ctx, kv.Options{
		Backend: s.cfg.Backend,
		Dir:     s.cfg.DataDirAbs,
		Logger:  s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", s.cfg.Backend, err)
	}

	store := task.NewStore(backend,
		task.WithKey(s.cfg.Key),
		task.WithLogger(s.log.Named("store")),
	)
	store.Load(ctx)

	bundle, err := notify.NewBundle()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	center := notify.NewCenter(notify.NewTranslator(bundle, s.cfg.Locale), s.cfg.NotifyTTL(), nil)

	s.kv = backend
	s.app = app.New(store, center, app.WithSearchDelay(s.cfg.SearchDebounce()))

	s.log.Debug("session opened",
		zap.String("backend", s.cfg.Backend),
		zap.String("dir", s.cfg.DataDirAbs),
		zap.String("key", store.Key()),
		zap.Int("tasks", store.Len()),
	)

	return s.app, nil
}

// Close releases the App and the backend if they were opened.
func (s *session) Close() {
	if s.app != nil {
		s.app.Close()
	}

	if s.kv != nil {
		err := s.kv.Close()
		if err != nil {
			s.log.Warn("closing storage", zap.Error(err))
		}
	}
}

// newLogger writes console encoded entries at level and above to w.
func newLogger(w io.Writer, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.WarnLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		lvl,
	)

	return zap.New(core)
}

type globalFlags struct {
	workDir    string
	configPath string
	dataDir    string
	backend    string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	valueFlags := []struct {
		short, long string
		dst         *string
	}{
		{"-C", "--cwd", &flags.workDir},
		{"-c", "--config", &flags.configPath},
		{"", "--data-dir", &flags.dataDir},
		{"", "--backend", &flags.backend},
	}

	for _, f := range valueFlags {
		if arg == f.long || (f.short != "" && arg == f.short) {
			if idx+1 >= len(args) {
				return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			*f.dst = args[idx+1]

			return consumedTwo, nil
		}

		if after, ok := strings.CutPrefix(arg, f.long+"="); ok {
			*f.dst = after

			return consumedOne, nil
		}
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok && after != "" {
		flags.workDir = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, `todo - local task manager

Usage: todo [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
      --data-dir <dir>   Override the data directory
      --backend <name>   Storage backend: file, sqlite or memory

Commands:`)

	if commands == nil {
		commands = allCommands(&session{}, nil)
	}

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}
}
