package bundle

// Options describes one bundling run. It is built once and only read
// afterwards.
type Options struct {
	// ConfigFile is the decoder configuration to bundle.
	ConfigFile string
	// OrigDir is where relative resource paths in ConfigFile are resolved.
	OrigDir    string
	// DestDir is the bundle directory to create.
	DestDir    string
	// Force allows replacing an existing DestDir.
	Force      bool

	// CopyConfigOptions is handed to the option filter. Empty skips filtering.
	CopyConfigOptions string

	// PackGrammar and BinarizeKenLM are recorded for the decoder run but
	// do not change how lines are classified.
	PackGrammar   bool
	BinarizeKenLM []string
}
