// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package array

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/stratastor/strata-csi/pkg/csiconfig"
	"github.com/stratastor/strata-csi/pkg/errors"
)

// Credentials identify and authenticate against an array management endpoint.
type Credentials struct {
	Username string
	Password string
	// Addresses of the management endpoints; several may front one array.
	Addresses []string
}

// Endpoint joins the management addresses the way they are reported in
// volume context.
func (c Credentials) Endpoint() string {
	return strings.Join(c.Addresses, csiconfig.ArrayAddressesDelimiter)
}

// Initiators are the identities a node reports in its node id.
type Initiators struct {
	NvmeNQN  string
	FCWWNs   []string
	IscsiIQN string
}

// CreateVolumeParams carries everything a mediator needs to allocate a volume.
type CreateVolumeParams struct {
	Name            string
	CapacityBytes   int64
	Pool            string
	SpaceEfficiency string
}

// Mediator is implemented by each vendor client. Every error it returns must
// be a *errors.CSIError; vendor errors are wrapped with errors.Wrap.
type Mediator interface {
	ArrayType() string
	MaxObjectNameLength() int

	GetVolume(ctx context.Context, name, pool string) (*Volume, error)
	GetVolumeByID(ctx context.Context, id string) (*Volume, error)
	CreateVolume(ctx context.Context, params CreateVolumeParams) (*Volume, error)
	CopyToExistingVolume(ctx context.Context, volumeID, sourceID string, sourceCapacity, minCapacity int64) error
	DeleteVolume(ctx context.Context, id string) error

	GetSnapshot(ctx context.Context, volumeID, name, pool string) (*Snapshot, error)
	GetSnapshotByID(ctx context.Context, id string) (*Snapshot, error)
	CreateSnapshot(ctx context.Context, volumeID, name, pool string) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error

	GetHostByIdentifiers(ctx context.Context, initiators Initiators) (*Host, []string, error)
	MapVolume(ctx context.Context, volumeID, hostName string) (int, error)
	UnmapVolume(ctx context.Context, volumeID, hostName string) error
	GetIscsiTargets(ctx context.Context) ([]string, error)
	GetFCTargets(ctx context.Context, hostName string) ([]string, error)

	Close() error
}

// Factory connects to an array and returns a ready mediator.
type Factory func(ctx context.Context, creds Credentials) (Mediator, error)

// Registry maps array type keys to mediator factories. Factories are added
// during startup; lookups afterwards are read-only.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Array type keys are at most
// csiconfig.MaxArrayTypeKeyLength characters since they are embedded in ids.
func (r *Registry) Register(arrayType string, f Factory) error {
	if arrayType == "" || len(arrayType) > csiconfig.MaxArrayTypeKeyLength ||
		strings.Contains(arrayType, csiconfig.ObjectIDDelimiter) {
		return errors.New(errors.ConfigValidationFailed, "invalid array type key "+arrayType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[arrayType] = f
	return nil
}

// Types returns the registered array types in a stable order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Connect builds a mediator for a known array type.
func (r *Registry) Connect(ctx context.Context, arrayType string, creds Credentials) (Mediator, error) {
	r.mu.RLock()
	f, ok := r.factories[arrayType]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ControllerUnknownArray, arrayType)
	}
	return f(ctx, creds)
}

// Detect tries every registered factory in order and returns the first
// mediator that connects. Used when the request carries no array type yet.
func (r *Registry) Detect(ctx context.Context, creds Credentials) (Mediator, error) {
	types := r.Types()
	if len(types) == 0 {
		return nil, errors.New(errors.ControllerUnknownArray, "no array types registered")
	}

	var lastErr error
	for _, t := range types {
		m, err := r.Connect(ctx, t, creds)
		if err == nil {
			return m, nil
		}
		// The array answered and refused the credentials.
		if errors.HasCode(err, errors.ArrayPermissionDenied) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
