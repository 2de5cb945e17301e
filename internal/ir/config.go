package ir

const (
	TargetHost   = "host"
	TargetDocker = "docker"
)

// Config holds the ambient settings of a provisioning run. It never changes
// which steps run or in what order.
type Config struct {
	Target string            `pkl:"target"` // "host" or "docker"
	Sudo   bool              `pkl:"sudo"`
	Env    map[string]string `pkl:"env"`
	Docker *DockerTarget     `pkl:"docker"`
}

type DockerTarget struct {
	Image     string `pkl:"image"`
	Container string `pkl:"container"` // exec into an existing container instead of creating one
	WorkDir   string `pkl:"workDir"`
	Keep      bool   `pkl:"keep"`
	Arch      string `pkl:"arch"` // e.g. "amd64"; empty lets the daemon choose
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Target: TargetHost,
		Env:    map[string]string{},
	}
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	if c.Target == "" {
		c.Target = TargetHost
	}
	if c.Env == nil {
		c.Env = map[string]string{}
	}
	if c.Target == TargetDocker && c.Docker == nil {
		c.Docker = &DockerTarget{}
	}
}
