package demo

import (
	"embed"
)

//go:embed config
var assets embed.FS

// Asset reads a bundled configuration, e.g. Asset("config/demo.json").
func Asset(name string) ([]byte, error) {
	return assets.ReadFile(name)
}
