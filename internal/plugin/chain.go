// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"context"
	"errors"
)

// Chain tries each loader in order. A loader reporting ErrPluginNotFound
// passes the name on to the next one; any other error stops the chain.
type Chain []Loader

// LoadPlugin implements Loader.
func (c Chain) LoadPlugin(ctx context.Context, name string) error {
	if err := Name(name).Validate(); err != nil {
		return err
	}

	var searched []string
	for _, l := range c {
		err := l.LoadPlugin(ctx, name)
		if err == nil {
			return nil
		}
		var nf *NotFoundError
		if errors.As(err, &nf) {
			searched = append(searched, nf.Searched...)
			continue
		}
		if errors.Is(err, ErrPluginNotFound) {
			continue
		}
		return err
	}
	return &NotFoundError{Name: name, Searched: searched}
}
