package cli

import (
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/models"
	"github.com/toyz/descres/internal/processor"
	"github.com/toyz/descres/internal/resolver"
	"github.com/toyz/descres/internal/snapshot"
	"github.com/toyz/descres/internal/utils"
)

// Resolution is one resolved snapshot
type Resolution struct {
	Snapshot *snapshot.Snapshot
	Bundle   *models.Bundle
	Index    *classindex.Index
	Result   *processor.Result

	// External is the dump of the bundle before marker processing
	External []byte
	// Resolved is the dump of the bundle after marker processing
	Resolved []byte
}

// Diff returns the unified diff between the external and resolved stores
func (r *Resolution) Diff() string {
	return snapshot.Diff(r.External, r.Resolved)
}

// Resolve loads a snapshot file and runs one resolution pass over it
func Resolve(path string, cfg config.Options, opts ...processor.Option) (*Resolution, error) {
	path, err := utils.ExistingFile(path)
	if err != nil {
		return nil, utils.WrapLoadError("snapshot", err)
	}
	snap, err := snapshot.LoadFile(path)
	if err != nil {
		return nil, utils.WrapLoadError("snapshot", err)
	}
	return ResolveSnapshot(snap, cfg, opts...)
}

// ResolveSnapshot runs one resolution pass over a decoded snapshot
func ResolveSnapshot(snap *snapshot.Snapshot, cfg config.Options, opts ...processor.Option) (*Resolution, error) {
	bundle, idx, err := snap.Build(cfg)
	if err != nil {
		return nil, utils.WrapProcessError("snapshot "+snap.Bundle, err)
	}
	external, err := snapshot.Dump(bundle)
	if err != nil {
		return nil, err
	}

	p, err := resolver.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	result := p.Process(bundle, idx)

	resolved, err := snapshot.Dump(bundle)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Snapshot: snap,
		Bundle:   bundle,
		Index:    idx,
		Result:   result,
		External: external,
		Resolved: resolved,
	}, nil
}
