package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/example/memecanvas/internal/config"
	"github.com/example/memecanvas/internal/drafts"
	"github.com/example/memecanvas/internal/logging"
	"github.com/example/memecanvas/internal/notify"
	"github.com/example/memecanvas/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs      *flag.FlagSet
	program string
	parent  *root
	config  *config.Config
	getenv  func(string) string
	stdout  io.Writer
	stderr  io.Writer

	notifier    *notify.Notifier
	activeTheme *theme.Theme
	store       drafts.Store

	configPath     string
	themeName      string
	backend        string
	logLevel       string
	logFile        string
	draftsDSN      string
	saveAlerts     bool
	downloadAlerts bool
	copyAlerts     bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func (r *root) subcommand(name string) *root {
	sub := *r
	sub.parent = r
	sub.program = strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &sub
}

func newRoot() *root {
	cfg, err := config.NewLoader(version, configPathOverride).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return newRootWith(cfg, os.Getenv, os.Stdout, os.Stderr)
}

func newRootWith(cfg *config.Config, getenv func(string) string, stdout, stderr io.Writer) *root {
	r := &root{
		fs:       flag.NewFlagSet("memecanvas", flag.ContinueOnError),
		program:  "memecanvas",
		config:   cfg,
		getenv:   getenv,
		stdout:   stdout,
		stderr:   stderr,
		notifier: notify.New(notify.LoadPreferences(getenv)),
	}
	r.fs.SetOutput(stderr)
	r.fs.StringVar(&r.configPath, "config", "", "read configuration from this RC or YAML file")
	// Precedence: CLI > Env > Config > Default. Flags default to empty and
	// only override when set.
	r.fs.StringVar(&r.themeName, "theme", "", "colour theme to use ("+strings.Join(theme.Embedded(), ", ")+")")
	r.fs.StringVar(&r.backend, "backend", "", "render backend: raster or gg")
	r.fs.StringVar(&r.logLevel, "log-level", "", "log level: debug, info, warn or error")
	r.fs.StringVar(&r.logFile, "log-file", "", "also write logs to this rotated file")
	r.fs.StringVar(&r.draftsDSN, "drafts", "", "SQLite file for saved drafts")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a meme")
	r.fs.BoolVar(&r.downloadAlerts, "notify-download", cfg.Notify.Download, "show a desktop notification after downloading a meme")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.Usage = usageFunc(r)
	return r
}

// settle merges the config file, environment and flags into r.config.
func (r *root) settle() error {
	if r.configPath != "" {
		cfg, err := config.LoadFile(r.configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", r.configPath, err)
		}
		r.config = cfg
	}
	if err := r.config.ApplyEnv(r.getenv); err != nil {
		return err
	}
	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if r.themeName != "" {
		r.config.Theme = r.themeName
	}
	if r.backend != "" {
		r.config.Backend = r.backend
	}
	if r.logLevel != "" {
		r.config.Log.Level = r.logLevel
	}
	if r.logFile != "" {
		r.config.Log.File = r.logFile
	}
	if r.draftsDSN != "" {
		r.config.Drafts.Driver = "sqlite"
		r.config.Drafts.DSN = r.draftsDSN
	}
	if set["notify-save"] {
		r.config.Notify.Save = r.saveAlerts
	}
	if set["notify-download"] {
		r.config.Notify.Download = r.downloadAlerts
	}
	if set["notify-copy"] {
		r.config.Notify.Copy = r.copyAlerts
	}
	r.notifier.Enable(notify.EventSave, r.config.Notify.Save)
	r.notifier.Enable(notify.EventDownload, r.config.Notify.Download)
	r.notifier.Enable(notify.EventCopy, r.config.Notify.Copy)
	return nil
}

// loadTheme resolves the active theme: config [theme.*] sections first, then
// files, embedded and installed themes.
func (r *root) loadTheme() *theme.Theme {
	name := r.config.Theme
	if t, ok := r.config.Themes[name]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && !strings.EqualFold(name, "default") {
			fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.settle(); err != nil {
		return err
	}
	_, closer, err := logging.Setup(logging.Options{Level: r.config.Log.Level, Format: r.config.Log.Format, File: r.config.Log.File})
	if err != nil {
		return err
	}
	defer closer.Close()
	defer r.closeDrafts()
	r.activeTheme = r.loadTheme()

	logrus.WithFields(logrus.Fields{
		"version": version,
		"backend": r.config.Backend,
		"theme":   r.activeTheme.Name,
	}).Debug("starting")

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var cmd runnable
	switch cmdName {
	case "edit", "preview":
		cmd, err = parseEditCmd(cmdName, subArgs, r.subcommand(cmdName))
	case "render":
		cmd, err = parseRenderCmd(subArgs, r.subcommand(cmdName))
	case "templates":
		cmd, err = parseTemplatesCmd(subArgs, r.subcommand(cmdName))
	case "drafts":
		cmd, err = parseDraftsCmd(subArgs, r.subcommand(cmdName))
	case "config":
		cmd, err = parseConfigCmd(subArgs, r.subcommand(cmdName))
	case "version":
		cmd = &versionCmd{root: r.subcommand(cmdName)}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) top() *root {
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// drafts opens the configured store on first use. Subcommands share the
// store of the top-level command.
func (r *root) drafts() (drafts.Store, error) {
	r = r.top()
	if r.store != nil {
		return r.store, nil
	}
	s, err := drafts.Open(r.config.Drafts.Driver, r.config.Drafts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open drafts: %w", err)
	}
	r.store = s
	return s, nil
}

func (r *root) closeDrafts() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			logrus.WithError(err).Warn("closing drafts")
		}
		r.store = nil
	}
}

// saveDraft stores a saved meme and reports it.
func (r *root) saveDraft(dataURL string) error {
	store, err := r.drafts()
	if err != nil {
		return err
	}
	d, err := drafts.FromDataURL("meme "+time.Now().Format("2006-01-02 15:04:05"), dataURL)
	if err != nil {
		return err
	}
	id, err := store.Create(context.Background(), d)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"id": id, "size": fmt.Sprintf("%dx%d", d.Width, d.Height)}).Info("draft stored")
	r.notifier.Save(id)
	return nil
}

func main() {
	_ = godotenv.Load()
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		switch {
		case errors.Is(err, flag.ErrHelp):
		case errors.As(err, &uerr):
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		default:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
