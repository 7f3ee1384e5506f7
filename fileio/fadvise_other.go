//go:build !linux

package fileio

import "os"

func dropCache(*os.File) {}
