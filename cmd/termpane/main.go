// Package main is a standalone host for termpane terminal sessions. It
// runs a shell, polls it every tick, and echoes the styled transcript
// to stdout.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/termpane/internal/config"
	"github.com/dshills/termpane/internal/logging"
	"github.com/dshills/termpane/internal/render"
	"github.com/dshills/termpane/internal/session"
	"github.com/dshills/termpane/internal/shell"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	ConfigPath string
	Shell      string
	WorkDir    string
	Command    string
	LogLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.Shell != "" {
		cfg.Shell = opts.Shell
	}
	if opts.WorkDir != "" {
		cfg.WorkDir = opts.WorkDir
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	log, err := logging.New(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Close()

	mgr := session.NewManager(session.ManagerConfig{
		DefaultShell:   cfg.Shell,
		DefaultWorkDir: cfg.WorkDir,
		Scrollback:     cfg.Scrollback,
		GraceTimeout:   cfg.GraceTimeout.Std(),
		Logger:         log,
	})
	defer mgr.Shutdown(cfg.GraceTimeout.Std())

	sess, err := mgr.Create(session.Options{
		Name: "termpane",
		Env:  cfg.EnvSlice(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start shell: %v\n", err)
		return 1
	}

	// Config edits take effect on the next run; note them so the user
	// knows the file parsed.
	if opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(opts.ConfigPath, func(config.Config) {
			log.Info("config file changed, restart to apply")
		})
		if err == nil {
			watcher.OnError(func(err error) {
				log.Warn("config reload failed", "error", err)
			})
			watcher.Start()
			defer watcher.Close()
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if opts.Command != "" {
		if err := sess.WriteCommand(opts.Command); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := sess.WriteCommand("exit"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		go forwardStdin(sess)
	}

	return pump(sess, signals, cfg.TickInterval.Std())
}

// forwardStdin feeds stdin lines to the shell as commands. EOF asks the
// shell to exit.
func forwardStdin(sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := sess.WriteCommand(scanner.Text()); err != nil {
			return
		}
	}
	_ = sess.WriteCommand("exit")
}

// pump polls the session every tick, printing transcript lines as they
// complete, until the shell exits or a signal arrives.
func pump(sess *session.Session, signals <-chan os.Signal, interval time.Duration) int {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	printed := 0
	flush := func() {
		lines := sess.Transcript().Lines()
		if len(lines) < printed {
			printed = 0
		}
		for ; printed < len(lines); printed++ {
			fmt.Println(render.AnsiString(lines[printed]))
		}
	}

	for {
		select {
		case <-signals:
			sess.Close()
			sess.Tick()
			flush()
			return 130

		case <-ticker.C:
			sess.Tick()
			flush()

			st := sess.Status()
			if st.State == shell.StateTerminated {
				sess.Tick()
				flush()
				return exitStatus(st.ExitCode)
			}
		}
	}
}

// exitStatus maps the shell's exit code to a process exit status.
// Abnormal exits report -1 from the process layer; surface those as a
// failure instead of success.
func exitStatus(code int) int {
	if code < 0 {
		return 1
	}
	return code
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Shell, "shell", "", "Shell executable (default: platform shell)")
	flag.StringVar(&opts.WorkDir, "workdir", "", "Working directory for the shell")
	flag.StringVar(&opts.WorkDir, "w", "", "Working directory (shorthand)")
	flag.StringVar(&opts.Command, "e", "", "Run a single command and exit")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "termpane - embedded terminal session host\n\n")
		fmt.Fprintf(os.Stderr, "Usage: termpane [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  termpane                    Interactive shell session\n")
		fmt.Fprintf(os.Stderr, "  termpane -e 'ls -la'        Run one command\n")
		fmt.Fprintf(os.Stderr, "  termpane -c termpane.toml   Use a config file\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("termpane %s (%s)\n", version, commit)
		os.Exit(0)
	}

	return opts
}
