package platform

import (
	"context"

	"github.com/aretw0/snapnote/pkg/core"
)

// Open wires a vault and hydrates its store.
//
//	v, err := platform.Open("./notes", platform.WithAdapter("sqlite"))
func Open(ctx context.Context, uri string, opts ...Option) (*Vault, error) {
	v, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := parseOptions(opts)
	storeOpts := []core.StoreOption{
		core.WithLogger(v.Logger),
		core.WithClock(o.clock),
	}
	if v.Images != nil {
		storeOpts = append(storeOpts, core.WithImageStore(v.Images))
	}

	v.Store = core.NewStore(v.Gateway, storeOpts...)
	if err := v.Store.Initialize(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// New returns a ready store for the vault at uri.
func New(ctx context.Context, uri string, opts ...Option) (*core.Store, error) {
	v, err := Open(ctx, uri, opts...)
	if err != nil {
		return nil, err
	}
	return v.Store, nil
}
