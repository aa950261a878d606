package cli

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/ice/common"
	ierrors "github.com/twitter/ice/common/errors"
	"github.com/twitter/ice/common/stats"
	"github.com/twitter/ice/config/iceconfig"
	"github.com/twitter/ice/config/jsonconfig"
	"github.com/twitter/ice/config/yamlconfig"
	"github.com/twitter/ice/ice"
)

// icecheck CLI interface that includes command handling
type CLIClient interface {
	Exec() error
}

// Environment is what the CLI checks configurations against.
type Environment struct {
	// Catalog lists the type names configurations may use.
	Catalog *jsonconfig.Catalog
	// Setup runs on every fresh container before bindings are installed.
	Setup func(*ice.Container) error
	// Asset reads bundled configuration files for GetConfigText.
	Asset func(string) ([]byte, error)
}

// Implements CLIClient - basic
type simpleCLIClient struct {
	rootCmd *cobra.Command
	env     Environment
	out     io.Writer

	config      string
	format      string
	envFile     string
	settings    string
	renderStats bool

	stat stats.StatsReceiver
}

func (c *simpleCLIClient) Exec() error {
	return c.rootCmd.Execute()
}

// NewSimpleCLIClient builds the command tree. args are used instead of
// os.Args when non nil.
func NewSimpleCLIClient(env Environment, out io.Writer, args []string) (CLIClient, error) {
	if env.Catalog == nil {
		return nil, errors.New("a catalog is required")
	}
	if out == nil {
		out = os.Stdout
	}
	c := &simpleCLIClient{env: env, out: out, stat: stats.DefaultStatsReceiver()}

	c.rootCmd = &cobra.Command{
		Use:           "icecheck",
		Short:         "icecheck validates and resolves ice binding configurations",
		Run:           func(*cobra.Command, []string) {},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.rootCmd.SetOutput(out)
	if args != nil {
		c.rootCmd.SetArgs(args)
	}
	flags := c.rootCmd.PersistentFlags()
	flags.StringVar(&c.config, "config", "", "bindings: literal text, a file path, or a bundled name like demo.json")
	flags.StringVar(&c.format, "format", "", "config format, json or yaml (default: guessed)")
	flags.StringVar(&c.envFile, "env-file", "", ".env file with ICE_* settings")
	flags.StringVar(&c.settings, "settings", "", "comma separated ICE_* overrides, e.g. ICE_LOCK_TIMEOUT=2s,ICE_LOG_LEVEL=debug")
	flags.BoolVar(&c.renderStats, "stats", false, "print container stats when done")

	c.addCmd(&validateCmd{})
	c.addCmd(&resolveCmd{})
	c.addCmd(&typesCmd{})

	return c, nil
}

func (c *simpleCLIClient) addCmd(cmd command) {
	cobraCmd := cmd.registerFlags()
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.run(c, innerCmd, args)
	}
	c.rootCmd.AddCommand(cobraCmd)
}

type command interface {
	registerFlags() *cobra.Command
	run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error
}

// configText resolves --config. An existing file wins over a bundled asset.
func (c *simpleCLIClient) configText() ([]byte, string, error) {
	if c.config == "" {
		return nil, "", ierrors.NewError(errors.New("--config is required"), ierrors.UsageExitCode)
	}
	if fi, err := os.Stat(c.config); err == nil && !fi.IsDir() {
		text, err := ioutil.ReadFile(c.config)
		if err != nil {
			return nil, "", ierrors.NewError(errors.Wrapf(err, "reading %v", c.config), ierrors.ConfigReadFailureExitCode)
		}
		return text, c.config, nil
	}
	asset := c.env.Asset
	if asset == nil {
		asset = func(name string) ([]byte, error) { return nil, errors.Errorf("no bundled config %v", name) }
	}
	text, err := jsonconfig.GetConfigText(c.config, asset)
	if err != nil {
		return nil, "", ierrors.NewError(err, ierrors.ConfigReadFailureExitCode)
	}
	return text, c.config, nil
}

func guessFormat(name string, text []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	if t := strings.TrimSpace(string(text)); strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return "json"
	}
	return "yaml"
}

func (c *simpleCLIClient) directives() (*jsonconfig.Directives, error) {
	latency := c.stat.Latency(stats.IcecheckLoadLatency_ms).Time()
	defer latency.Stop()

	text, name, err := c.configText()
	if err != nil {
		return nil, err
	}
	format := c.format
	if format == "" {
		format = guessFormat(name, text)
	}
	var d *jsonconfig.Directives
	switch format {
	case "json":
		d, err = c.env.Catalog.Parse(text)
	case "yaml":
		d, err = yamlconfig.Parse(c.env.Catalog, text)
	default:
		return nil, ierrors.NewError(errors.Errorf("unknown format %q", format), ierrors.UsageExitCode)
	}
	if err != nil {
		return nil, ierrors.NewError(err, ierrors.ConfigParseFailureExitCode)
	}
	return d, nil
}

// container builds a fresh container from the environment settings and the
// optional directives.
func (c *simpleCLIClient) container(d *jsonconfig.Directives) (*ice.Container, error) {
	var envFiles []string
	if c.envFile != "" {
		envFiles = append(envFiles, c.envFile)
	}
	settings, err := iceconfig.LoadWithOverrides(common.SplitCommaSepToMap(c.settings), envFiles...)
	if err != nil {
		return nil, ierrors.NewError(err, ierrors.ConfigReadFailureExitCode)
	}
	opts := append(settings.Apply(), ice.WithStats(c.stat))
	ctr := ice.New(opts...)
	if c.env.Setup != nil {
		if err := c.env.Setup(ctr); err != nil {
			return nil, ierrors.NewError(err, ierrors.InstallFailureExitCode)
		}
	}
	if d != nil {
		if err := ctr.InstallModule(d); err != nil {
			return nil, ierrors.NewError(err, ierrors.InstallFailureExitCode)
		}
		c.stat.Counter(stats.IcecheckInstalledBindingsCounter).Inc(int64(d.Len()))
	}
	log.WithField("container", ctr.ID()).Debug("container ready")
	return ctr, nil
}

// done disposes ctr and prints stats if asked to.
func (c *simpleCLIClient) done(ctr *ice.Container, err error) error {
	if derr := ctr.Dispose(); derr != nil && err == nil {
		err = ierrors.NewError(derr, ierrors.DisposeFailureExitCode)
	}
	if c.renderStats {
		c.out.Write(c.stat.Render(true))
		io.WriteString(c.out, "\n")
	}
	return err
}

// exitCodeFor maps injection failures to process exit codes.
func exitCodeFor(err error) ierrors.ExitCode {
	switch ice.KindOf(err) {
	case ice.UnresolvableAbstractType:
		return ierrors.UnresolvableTypeExitCode
	case ice.CircularDependency:
		return ierrors.CircularDependencyExitCode
	case ice.ConstructionTimeout:
		return ierrors.ConstructionTimeoutExitCode
	case ice.AmbiguousConstructor:
		return ierrors.AmbiguousConstructorExitCode
	case ice.InvalidResolutionTarget:
		return ierrors.InvalidResolutionTargetExitCode
	case ice.ConstructionFailed:
		return ierrors.ConstructionFailureExitCode
	}
	return ierrors.ResolveFailureExitCode
}
