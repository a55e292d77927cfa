// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stratastor/strata-csi/pkg/array"
	"github.com/stratastor/strata-csi/pkg/errors"
)

// recordingLogger keeps every line so tests can assert on diagnostics.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) record(level, msg string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (r *recordingLogger) Debug(msg string, args ...interface{}) { r.record("DEBUG", msg, args...) }
func (r *recordingLogger) Info(msg string, args ...interface{})  { r.record("INFO", msg, args...) }
func (r *recordingLogger) Warn(msg string, args ...interface{})  { r.record("WARN", msg, args...) }
func (r *recordingLogger) Error(msg string, args ...interface{}) { r.record("ERROR", msg, args...) }

func (r *recordingLogger) contains(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func (r *recordingLogger) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.lines {
		if strings.HasPrefix(l, "ERROR") {
			n++
		}
	}
	return n
}

// fakeMediator is an in-memory array. Fields ending in Err force failures.
type fakeMediator struct {
	mu        sync.Mutex
	arrayType string
	address   string

	volumes   map[string]*array.Volume
	snapshots map[string]*array.Snapshot
	hosts     []*array.Host
	mappings  map[string]string
	nextID    int

	connectivity []string
	iscsiTargets []string
	fcTargets    []string

	createVolumeErr error
	mapErr          error
	copyErr         error
	copies          int
}

func newFakeMediator(arrayType, address string) *fakeMediator {
	return &fakeMediator{
		arrayType:    arrayType,
		address:      address,
		volumes:      make(map[string]*array.Volume),
		snapshots:    make(map[string]*array.Snapshot),
		mappings:     make(map[string]string),
		connectivity: []string{"iscsi", "fc"},
		iscsiTargets: []string{"iqn.1986-03.com.ibm:2145.array1"},
		fcTargets:    []string{"500507680b21ac99"},
	}
}

func (f *fakeMediator) factory() array.Factory {
	return func(ctx context.Context, creds array.Credentials) (array.Mediator, error) {
		return f, nil
	}
}

func (f *fakeMediator) id() string {
	f.nextID++
	return fmt.Sprintf("%032d", f.nextID)
}

func (f *fakeMediator) addVolume(name, pool string, capacity int64) *array.Volume {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := array.NewVolume(capacity, f.id(), name, f.address, pool, "", f.arrayType, "thin")
	f.volumes[v.ID] = &v
	return &v
}

func (f *fakeMediator) addSnapshot(volumeName, name string, ready bool) *array.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := array.NewSnapshot(1<<30, f.id(), name, f.address, volumeName, ready, f.arrayType)
	f.snapshots[s.ID] = &s
	return &s
}

func (f *fakeMediator) ArrayType() string        { return f.arrayType }
func (f *fakeMediator) MaxObjectNameLength() int { return 63 }
func (f *fakeMediator) Close() error             { return nil }

func (f *fakeMediator) GetVolume(_ context.Context, name, _ string) (*array.Volume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.volumes {
		if v.Name == name {
			c := *v
			return &c, nil
		}
	}
	return nil, errors.New(errors.ArrayObjectNotFound, name)
}

func (f *fakeMediator) GetVolumeByID(_ context.Context, id string) (*array.Volume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.volumes[id]; ok {
		c := *v
		return &c, nil
	}
	return nil, errors.New(errors.ArrayObjectNotFound, id)
}

func (f *fakeMediator) CreateVolume(_ context.Context, p array.CreateVolumeParams) (*array.Volume, error) {
	if f.createVolumeErr != nil {
		return nil, f.createVolumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := array.NewVolume(p.CapacityBytes, f.id(), p.Name, f.address, p.Pool, "", f.arrayType, p.SpaceEfficiency)
	f.volumes[v.ID] = &v
	c := v
	return &c, nil
}

func (f *fakeMediator) CopyToExistingVolume(_ context.Context, volumeID, sourceID string, _, _ int64) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.volumes[volumeID]
	if !ok {
		return errors.New(errors.ArrayObjectNotFound, volumeID)
	}
	updated := *v
	updated.CopySourceID = sourceID
	f.volumes[volumeID] = &updated
	f.copies++
	return nil
}

func (f *fakeMediator) DeleteVolume(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.volumes[id]; !ok {
		return errors.New(errors.ArrayObjectNotFound, id)
	}
	if _, mapped := f.mappings[id]; mapped {
		return errors.New(errors.ArrayObjectInUse, id)
	}
	delete(f.volumes, id)
	return nil
}

func (f *fakeMediator) GetSnapshot(_ context.Context, _, name, _ string) (*array.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.snapshots {
		if s.Name == name {
			c := *s
			return &c, nil
		}
	}
	return nil, errors.New(errors.ArrayObjectNotFound, name)
}

func (f *fakeMediator) GetSnapshotByID(_ context.Context, id string) (*array.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.snapshots[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, errors.New(errors.ArrayObjectNotFound, id)
}

func (f *fakeMediator) CreateSnapshot(_ context.Context, volumeID, name, _ string) (*array.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.volumes[volumeID]
	if !ok {
		return nil, errors.New(errors.ArrayObjectNotFound, volumeID)
	}
	s := array.NewSnapshot(v.CapacityBytes, f.id(), name, f.address, v.Name, true, f.arrayType)
	s.CreatedAt = time.Now().UTC()
	f.snapshots[s.ID] = &s
	c := s
	return &c, nil
}

func (f *fakeMediator) DeleteSnapshot(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.snapshots[id]; !ok {
		return errors.New(errors.ArrayObjectNotFound, id)
	}
	delete(f.snapshots, id)
	return nil
}

func (f *fakeMediator) GetHostByIdentifiers(_ context.Context, in array.Initiators) (*array.Host, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.hosts {
		for _, iqn := range h.IscsiNames {
			if iqn == in.IscsiIQN {
				c := *h
				return &c, f.connectivity, nil
			}
		}
		for _, wwn := range h.WWNs {
			for _, want := range in.FCWWNs {
				if wwn == want {
					c := *h
					return &c, f.connectivity, nil
				}
			}
		}
	}
	return nil, nil, errors.New(errors.ArrayHostNotFound, in.IscsiIQN)
}

func (f *fakeMediator) MapVolume(_ context.Context, volumeID, hostName string) (int, error) {
	if f.mapErr != nil {
		return 0, f.mapErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.volumes[volumeID]; !ok {
		return 0, errors.New(errors.ArrayObjectNotFound, volumeID)
	}
	if h, mapped := f.mappings[volumeID]; mapped && h != hostName {
		return 0, errors.New(errors.ArrayVolumeMappedToMultipleHosts, volumeID)
	}
	f.mappings[volumeID] = hostName
	return 1, nil
}

func (f *fakeMediator) UnmapVolume(_ context.Context, volumeID, hostName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, mapped := f.mappings[volumeID]; !mapped || h != hostName {
		return errors.New(errors.ArrayVolumeAlreadyUnmapped, volumeID)
	}
	delete(f.mappings, volumeID)
	return nil
}

func (f *fakeMediator) GetIscsiTargets(_ context.Context) ([]string, error) {
	return f.iscsiTargets, nil
}

func (f *fakeMediator) GetFCTargets(_ context.Context, _ string) ([]string, error) {
	return f.fcTargets, nil
}
