package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	absint "github.com/wcbup/Abstract-Interpretation"
	"github.com/wcbup/Abstract-Interpretation/absexec"
	"github.com/wcbup/Abstract-Interpretation/pkg/classfile"
	"github.com/wcbup/Abstract-Interpretation/pkg/report"
)

// app carries the configuration shared by all subcommands.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "absint",
		Short:         "Abstract interpretation of JVM bytecode over a sign domain",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default .absint.yaml in the working directory)")
	pf.String("classes", "decompiled", "directory of jvm2json class documents")
	pf.StringP("format", "f", "text", "output format: "+strings.Join(report.Formats, ", "))
	pf.Bool("no-color", false, "disable colored output")
	pf.Int("max-rounds", 1000, "round budget per method; 0 means unbounded")
	pf.Bool("memo", false, "skip states that were already explored")
	pf.String("log-level", "", "interpreter log level: error, warn, info or debug")
	pf.String("log-format", "text", "interpreter log format: text or json")
	_ = a.v.BindPFlags(pf)

	a.v.SetEnvPrefix("absint")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return report.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(
		newAnalyzeCmd(a),
		newCasesCmd(a),
		newDumpCmd(a),
	)
	return cmd
}

func (a *app) loadConfig() error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}
	a.v.SetConfigName(".absint")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(".")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func (a *app) program() (*absint.Program, error) {
	return classfile.LoadDir(a.v.GetString("classes"))
}

func (a *app) options(stderr io.Writer) absexec.Options {
	opts := absexec.DefaultOptions()
	opts.MaxRounds = a.v.GetInt("max-rounds")
	opts.EnableMemo = a.v.GetBool("memo")
	opts.LogLevel = a.v.GetString("log-level")
	opts.LogFormat = a.v.GetString("log-format")
	opts.LogOutput = stderr
	return opts
}

func (a *app) render(cmd *cobra.Command, results []*absexec.Result) error {
	format, err := report.ParseFormat(a.v.GetString("format"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	useColor := false
	if f, ok := out.(*os.File); ok && !a.v.GetBool("no-color") {
		useColor = report.ColorEnabled(f)
	}
	return report.Render(out, results, format, report.Options{Color: useColor})
}
