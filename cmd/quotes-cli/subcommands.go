package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"quotes-cli/internal/config"
	"quotes-cli/internal/features"

	"github.com/olekukonko/tablewriter"
)

func configMain(root rootArgs, args []string) {
	if err := runConfig(root, args, os.Stdout); err != nil {
		fatalf("config: %v", err)
	}
}

// runConfig 处理 config show|set|path。set 只写回文件层，不会把环境变量固化进文件。
func runConfig(root rootArgs, args []string, out io.Writer) error {
	action := "show"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("config "+action, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var cfgPath string
	var overrides stringSlice
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.quotes/config.toml)")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch action {
	case "show":
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = config.ApplyKVOverrides(cfg, prependOverrides(root.overrides, []string(overrides)))
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "# source: %s\n%s", cfg.Source, data)
		return nil
	case "set":
		pairs := append([]string(overrides), fs.Args()...)
		if len(pairs) == 0 {
			return errors.New("usage: quotes-cli config set key=value [key=value...]")
		}
		cfg, err := config.LoadFile(cfgPath)
		if err != nil {
			return err
		}
		cfg = config.ApplyKVOverrides(cfg, pairs)
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg.Source, cfg); err != nil {
			return err
		}
		log.WithField("path", cfg.Source).Info("config saved")
		_, _ = fmt.Fprintf(out, "saved %s\n", cfg.Source)
		return nil
	case "path":
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		_, _ = fmt.Fprintln(out, path)
		return nil
	default:
		return fmt.Errorf("unknown config action %q (use show, set or path)", action)
	}
}

func featuresMain(root rootArgs, args []string) {
	if err := runFeatures(root, args, os.Stdout); err != nil {
		fatalf("features: %v", err)
	}
}

// runFeatures 以表格打印各特性的阶段与最终取值，已合并配置文件与命令行覆盖。
func runFeatures(root rootArgs, args []string, out io.Writer) error {
	var cfgPath string
	var overrides stringSlice
	fs := flag.NewFlagSet("features", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.quotes/config.toml)")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyKVOverrides(cfg, prependOverrides(root.overrides, []string(overrides)))

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Feature", "Stage", "Enabled", "Description"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, spec := range features.Specs {
		table.Append([]string{spec.Key, string(spec.Stage), strconv.FormatBool(cfg.Feature(spec.Key)), spec.Description})
	}
	table.Render()
	return nil
}
