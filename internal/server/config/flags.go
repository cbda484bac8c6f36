package config

import (
	"github.com/spf13/pflag"
)

// Flags are the command-line overrides of Config. Only flags set on the
// command line are applied.
type Flags struct {
	fs *pflag.FlagSet
	v  Config
}

// BindFlags registers the server flags on fs with the defaults as values.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	f.v.LoadDefaults()

	fs.StringVarP(&f.v.Address, "address", "a", f.v.Address, "address and port to listen on")
	fs.StringVar(&f.v.Storage, "storage", f.v.Storage, "storage backend: memory or bbolt")
	fs.StringVarP(&f.v.DataPath, "data", "d", f.v.DataPath, "bbolt database file")
	fs.StringVarP(&f.v.SecretKey, "secret", "s", f.v.SecretKey, "JWT signing secret (random when empty)")
	fs.DurationVarP(&f.v.TokenValidityDuration, "token-ttl", "t", f.v.TokenValidityDuration, "token validity")
	fs.StringVarP(&f.v.LogLevel, "log-level", "l", f.v.LogLevel, "log level: debug, info, warn or error")
	return f
}

// Apply copies every flag that was set on the command line into cfg.
func (f *Flags) Apply(cfg *Config) {
	set := map[string]func(){
		"address":   func() { cfg.Address = f.v.Address },
		"storage":   func() { cfg.Storage = f.v.Storage },
		"data":      func() { cfg.DataPath = f.v.DataPath },
		"secret":    func() { cfg.SecretKey = f.v.SecretKey },
		"token-ttl": func() { cfg.TokenValidityDuration = f.v.TokenValidityDuration },
		"log-level": func() { cfg.LogLevel = f.v.LogLevel },
	}
	for name, apply := range set {
		if f.fs.Changed(name) {
			apply()
		}
	}
}
