package ca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const (
	ownedArchitecturesPath  = "/api/aggregatesvc/WorkspaceFacadeAPIs/owned/architectures"
	sharedArchitecturesPath = "/api/aggregatesvc/WorkspaceFacadeAPIs/shared/architectures/private"
)

// Sources selects which architecture lists ListArchitectures combines.
type Sources struct {
	Private       bool // architectures owned by the token holder
	Collaboration bool // architectures shared with the token holder
}

// ListArchitectures returns the architectures visible to the token holder,
// private ones first. A source that fails is logged and skipped; an error is
// returned only when every requested source failed.
func (c *Client) ListArchitectures(ctx context.Context, src Sources) ([]Architecture, error) {
	if !src.Private && !src.Collaboration {
		return nil, ErrNoSource
	}

	var (
		all  []Architecture
		errs []error
		ok   int
	)
	if src.Private {
		q := url.Values{"status": {"Pending"}}
		archs, err := c.listArchitectures(ctx, c.endpoint(ownedArchitecturesPath, q), "list private architectures")
		if err != nil {
			c.logger.WarnContext(ctx, "architecture source failed", "source", "private", "error", err)
			errs = append(errs, err)
		} else {
			all = append(all, archs...)
			ok++
		}
	}
	if src.Collaboration {
		archs, err := c.listArchitectures(ctx, c.endpoint(sharedArchitecturesPath, nil), "list collaboration architectures")
		if err != nil {
			c.logger.WarnContext(ctx, "architecture source failed", "source", "collaboration", "error", err)
			errs = append(errs, err)
		} else {
			all = append(all, archs...)
			ok++
		}
	}
	if ok == 0 {
		return nil, errors.Join(errs...)
	}
	if all == nil {
		all = []Architecture{}
	}
	return all, nil
}

func (c *Client) listArchitectures(ctx context.Context, u, operation string) ([]Architecture, error) {
	var list architectureList
	if err := c.doJSON(ctx, http.MethodPut, u, operation, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetArchitecture returns the metadata of one architecture.
func (c *Client) GetArchitecture(ctx context.Context, archID string) (*ArchitectureInfo, error) {
	const op = "get architecture"
	if err := required(op, "archID", archID); err != nil {
		return nil, err
	}
	u := c.endpoint("/api/architectures/"+url.PathEscape(archID), nil)

	var info ArchitectureInfo
	if err := c.doJSON(ctx, http.MethodGet, u, op, &info); err != nil {
		return nil, err
	}
	if info.ArchID == "" {
		info.ArchID = archID
	}
	return &info, nil
}

// FindArchitecture returns the entry with the given ID from list.
func FindArchitecture(list []Architecture, id string) (Architecture, error) {
	for _, a := range list {
		if a.ID == id {
			return a, nil
		}
	}
	return Architecture{}, fmt.Errorf("architecture %q not in list", id)
}
