package colourscan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/colourscan/colourscan/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgOutput  string
	cfgFormat  string
	cfgThreads int
	cfgNoColor bool
	cfgForce   bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .colourscan.yml (or .toml) with the given options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".colourscan.yml", "output file path; a .toml extension writes TOML")
	initCmd.Flags().StringVar(&cfgFormat, "report-format", "debug", "default report format")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if !config.ValidFormat(cfgFormat) {
		return fmt.Errorf("unknown format %q", cfgFormat)
	}
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}
	fc := config.FileConfig{
		EscapePairs: intPtr(flagEscapePairs),
		Format:      strPtr(cfgFormat),
		NoColor:     boolPtr(cfgNoColor),
		FailOn:      strPtr("never"),
	}
	if cfgThreads != 0 {
		fc.Threads = intPtr(cfgThreads)
	}
	if err := fc.Validate(); err != nil {
		return err
	}

	var b []byte
	if strings.EqualFold(filepath.Ext(cfgOutput), ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(fc); err != nil {
			return err
		}
		b = buf.Bytes()
	} else {
		var err error
		if b, err = yaml.Marshal(&fc); err != nil {
			return err
		}
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}
