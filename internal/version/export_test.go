package version

import "os"

// SetWriteFile swaps the component writer for failure-injection tests and
// returns a restore function.
func SetWriteFile(fn func(name string, data []byte, perm os.FileMode) error) func() {
	prev := writeFile
	writeFile = fn
	return func() { writeFile = prev }
}
