package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/calvinalkan/todo/internal/config"
	"github.com/calvinalkan/todo/internal/notify"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(sess *session) *Command {
	fs := flag.NewFlagSet("print-config", flag.ContinueOnError)
	fs.Bool("json", false, "Print the config file fields as JSON")

	return &Command{
		Flags: fs,
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			asJSON, _ := fs.GetBool("json")
			if asJSON {
				formatted, err := config.Format(sess.cfg)
				if err != nil {
					return err
				}

				io.Println(formatted)

				return nil
			}

			bundle, err := notify.NewBundle()
			if err != nil {
				return err
			}

			execPrintConfig(io, sess.cfg, notify.NewTranslator(bundle, sess.cfg.Locale).Lang())

			return nil
		},
	}
}

// messages is the catalog language notifications resolve to for the locale.
func execPrintConfig(io *IO, cfg config.Config, messages string) {
	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("data_dir=" + cfg.DataDirAbs)
	io.Println("backend=" + cfg.Backend)
	io.Println("key=" + cfg.Key)
	io.Println("locale=" + cfg.Locale)
	io.Println("messages=" + messages)
	io.Println("log_level=" + cfg.LogLevel)
	io.Println("search_debounce_ms=" + strconv.Itoa(cfg.SearchDebounceMS))
	io.Println("notify_ttl_ms=" + strconv.Itoa(cfg.NotifyTTLMS))

	io.Println("")
	io.Println("# sources")

	src := cfg.Sources
	if src.Global == "" && src.Project == "" && src.DotEnv == "" && len(src.Env) == 0 {
		io.Println("(defaults only)")
		return
	}

	if src.Global != "" {
		io.Println("global_config=" + src.Global)
	}

	if src.Project != "" {
		io.Println("project_config=" + src.Project)
	}

	if src.DotEnv != "" {
		io.Println("dotenv=" + src.DotEnv)
	}

	if len(src.Env) > 0 {
		io.Println("env=" + strings.Join(src.Env, ","))
	}
}
