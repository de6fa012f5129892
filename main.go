// Public domain.

package main

import "github.com/gem-daq/vfat3ana/internal/anaprog"

func main() {
	anaprog.Main()
}
