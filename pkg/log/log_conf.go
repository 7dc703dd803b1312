package log

import "fmt"

// Sinks and formats understood by Conf.
const (
	OutputStdout = "stdout"
	OutputFile   = "file"
	OutputBoth   = "both"

	FormatConsole = "console"
	FormatJSON    = "json"
)

// Conf holds logger configuration options.
type Conf struct {
	Output     string // stdout, file or both
	Format     string // console or json
	Path       string // directory of the log file
	Filename   string
	Level      string
	Service    string // added to every entry when set
	MaxAgeDays int    // rotated files older than this are removed
	MaxSizeMB  int    // size of a single file before rotation
	MaxBackups int
}

// SetDefaults returns the default configuration.
func SetDefaults() *Conf {
	return &Conf{
		Output:     OutputStdout,
		Format:     FormatConsole,
		Path:       "./logs",
		Filename:   "newsroom.log",
		Level:      "INFO",
		MaxAgeDays: 7,
		MaxSizeMB:  100,
		MaxBackups: 10,
	}
}

// Validate rejects unknown sinks and fills rotation defaults when a file is
// written.
func (c *Conf) Validate() error {
	switch c.Output {
	case "", OutputStdout, OutputFile, OutputBoth:
	default:
		return fmt.Errorf("unknown log output %q", c.Output)
	}
	if !c.writesFile() {
		return nil
	}
	if c.Path == "" {
		return fmt.Errorf("log path is required when output is %q", c.Output)
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 100
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 10
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = 7
	}
	return nil
}

func (c *Conf) writesStdout() bool {
	return c.Output != OutputFile
}

func (c *Conf) writesFile() bool {
	return c.Output == OutputFile || c.Output == OutputBoth
}
