package main

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/klimozawr/klimozawr/internal/engine"
	"github.com/klimozawr/klimozawr/internal/icmp"
	"github.com/klimozawr/klimozawr/internal/meta"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
)

const (
	DefaultPort    = 9000
	DefaultSummary = "@every 1m"
)

type KlimozawrCommand struct {
	OutStream io.Writer
	ErrStream io.Writer

	EndpointsPath string
	ListenPort    int
	Workers       int
	OutputPath    string
	LogFile       string
	LogLevel      string
	EnvFile       string
	UserInfo      string
	Summary       string
	ShowVersion   bool
	ShowHelp      bool

	// Prober is used instead of the ICMP client if set.
	Prober engine.Prober
}

var defaultKlimozawrCommand = &KlimozawrCommand{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
}

//go:embed help.txt
var helpText string

func (cmd *KlimozawrCommand) PrintUsage(detail bool) {
	tmpl := template.Must(template.New("help.txt").Parse(helpText))
	tmpl.Execute(cmd.ErrStream, map[string]interface{}{
		"Version":       meta.Version,
		"PrivilegedEnv": icmp.PrivilegedEnv,
		"Short":         !detail,
	})
}

func (cmd *KlimozawrCommand) ParseArgs(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("klimozawr", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVarP(&cmd.EndpointsPath, "endpoints", "f", "", "Path to the endpoints file")
	flags.IntVarP(&cmd.ListenPort, "port", "p", DefaultPort, "HTTP listen port")
	flags.IntVarP(&cmd.Workers, "workers", "w", engine.DefaultWorkers, "Number of concurrent probes")
	flags.StringVarP(&cmd.OutputPath, "output", "o", "", "Path to the JSON lines output")
	flags.StringVarP(&cmd.LogFile, "log-file", "l", "", "Path to the log file")
	flags.StringVar(&cmd.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cmd.EnvFile, "env-file", "", "Path to the environment file")
	flags.StringVarP(&cmd.UserInfo, "user", "u", "", "Username and password for HTTP pages")
	flags.StringVar(&cmd.Summary, "summary", DefaultSummary, "Schedule of the summary log")
	flags.BoolVarP(&cmd.ShowVersion, "version", "v", false, "Show version")
	flags.BoolVarP(&cmd.ShowHelp, "help", "h", false, "Show help message")

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	if cmd.ShowVersion || cmd.ShowHelp {
		return 0
	}

	if flags.NArg() > 0 {
		fmt.Fprintf(cmd.ErrStream, "invalid argument: unexpected argument: %s\n", flags.Arg(0))
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	if cmd.EndpointsPath == "" {
		cmd.PrintUsage(false)
		return 2
	}

	if cmd.Workers <= 0 {
		fmt.Fprintf(cmd.ErrStream, "invalid argument: workers must be greater than 0: %d\n", cmd.Workers)
		return 2
	}

	if cmd.ListenPort < 0 || cmd.ListenPort > 65535 {
		fmt.Fprintf(cmd.ErrStream, "invalid argument: invalid port number: %d\n", cmd.ListenPort)
		return 2
	}

	if _, err := cron.ParseStandard(cmd.Summary); err != nil {
		fmt.Fprintf(cmd.ErrStream, "invalid argument: invalid summary schedule: %s\n", err)
		return 2
	}

	return 0
}

func (cmd *KlimozawrCommand) PrintVersion() {
	fmt.Fprintf(cmd.OutStream, "klimozawr version %s (%s)\n", meta.Version, meta.Commit)
}

func (cmd *KlimozawrCommand) Run(args []string) (exitCode int) {
	if code := cmd.ParseArgs(args); code != 0 {
		return code
	}

	if cmd.ShowVersion {
		cmd.PrintVersion()
		return 0
	}

	if cmd.ShowHelp {
		cmd.PrintUsage(true)
		return 0
	}

	return cmd.RunServer()
}

func main() {
	os.Exit(defaultKlimozawrCommand.Run(os.Args))
}
