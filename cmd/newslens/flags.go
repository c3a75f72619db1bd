package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bind maps config keys to flags so a set flag overrides env and file.
func bind(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := fs.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}
