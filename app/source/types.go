package source

// Adapter kinds. RSS covers exchange announcement feeds and airdrop
// aggregators; launchpad covers JSON listing endpoints such as Binance
// Launchpool or OKX Jumpstart.
const (
	TypeRSS       = "rss"
	TypeLaunchpad = "launchpad"
)

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Platform string         `yaml:"platform"`
	Type     string         `yaml:"type"`
	Settings ConfigSettings `yaml:"settings"`
	Keywords []string       `yaml:"keywords"`
}

type ConfigSettings struct {
	Enabled  bool `yaml:"enabled"`
	Timeout  int  `yaml:"timeout"` // seconds
	MaxItems int  `yaml:"max_items"`
}
