package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed builtin.yaml
var builtinYAML []byte

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Builtin returns the default component catalogue shipped with the binary.
//
// The catalogue is parsed once on first use. The embedded data is validated
// by the package tests, so a parse failure here is a programming error and
// panics.
func Builtin() *Catalog {
	builtinOnce.Do(func() {
		var f file
		f, builtinErr = decode(builtinYAML)
		if builtinErr != nil {
			return
		}
		builtin, builtinErr = New(f.Components...)
	})
	if builtinErr != nil {
		panic(fmt.Sprintf("catalog: embedded catalogue is invalid: %v", builtinErr))
	}
	return builtin
}
