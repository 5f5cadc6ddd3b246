package config

// Limits defines operational ceilings for a loop run.
type Limits struct {
	MaxIterations     int `yaml:"max_iterations"`
	MaxStallCount     int `yaml:"max_stall_count"`
	MaxParallelAgents int `yaml:"max_parallel_agents"`
}

// ServerConfig configures the optional watch server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Config represents the .aot/config.yaml file.
type Config struct {
	Limits Limits        `yaml:"limits"`
	Server *ServerConfig `yaml:"server,omitempty"`
}
