// Package clix holds helpers shared by the command packages.
package clix

import (
	"context"

	"github.com/indaco/pkgmeta/internal/assembler"
	"github.com/indaco/pkgmeta/internal/config"
	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/logging"
)

// NewFileSystemFn returns the filesystem commands operate on. Tests swap it
// for a mock.
var NewFileSystemFn = func() core.FileSystem {
	return core.NewOSFileSystem()
}

// NewAssembler returns an Assembler rooted at cfg.Root that logs through
// the logger carried by ctx.
func NewAssembler(ctx context.Context, fs core.FileSystem, cfg *config.Config) *assembler.Assembler {
	return assembler.New(fs,
		assembler.WithRoot(cfg.Root),
		assembler.WithLogger(logging.FromContext(ctx)),
	)
}
