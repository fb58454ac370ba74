// Filesystem Observer: watches DATA_DIR recursively and drives the common
// Updater, spec §4.2. Grounded on original_source/mini_node/data/fs.py's
// DataDirectoryObserver/FileRegistryUpdater, adapted to fsnotify's event
// model (SPEC_FULL.md §11): fsnotify, unlike Python's watchdog, does not
// correlate a directory rename's old/new paths into one event, so a rename
// is handled as a Remove of the old path followed by a Create of the new
// one — functionally equivalent for this dispatcher, since both halves of
// on_moved_dir are themselves expressed as independent remove/include calls.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package monitor

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/fname"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

// FSObserver is the Filesystem Observer Monitor back-end.
type FSObserver struct {
	dataDir string
	updater *Updater
	watcher *fsnotify.Watcher

	mu   sync.Mutex
	dirs map[string]struct{} // watched directories, for move/delete disambiguation
}

func NewFSObserver(dataDir string, reg *registry.Registry) (*FSObserver, error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	o := &FSObserver{
		dataDir: abs,
		updater: NewUpdater(abs, reg),
		watcher: w,
		dirs:    map[string]struct{}{},
	}
	return o, nil
}

// Reconcile performs the startup scan (spec §4.2's analogue for the
// filesystem backend: populate the Registry, then start watching).
func (o *FSObserver) Reconcile() error {
	return ScanDataDirectory(o.dataDir, o.updater.reg)
}

func (o *FSObserver) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if werr := o.watcher.Add(path); werr != nil {
				nlog.Warningf("cannot watch %s: %v", path, werr)
			} else {
				o.mu.Lock()
				o.dirs[path] = struct{}{}
				o.mu.Unlock()
			}
		}
		return nil
	})
}

// Observe runs until stop is closed, streaming filesystem events into the
// Updater. It never returns an error to the caller on event-handling
// failures — those are logged and skipped, matching the Monitor-error
// policy in spec §7.
func (o *FSObserver) Observe(stop <-chan struct{}) error {
	if err := o.watchTree(o.dataDir); err != nil {
		return err
	}
	defer o.watcher.Close()

	nlog.Infof("observing directory for changes: %s", o.dataDir)
	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-o.watcher.Events:
			if !ok {
				return nil
			}
			o.handle(ev)
		case err, ok := <-o.watcher.Errors:
			if !ok {
				return nil
			}
			nlog.Warningf("filesystem watch error: %v", err)
		}
	}
}

func (o *FSObserver) handle(ev fsnotify.Event) {
	path := ev.Name

	switch {
	case ev.Has(fsnotify.Create):
		o.handleCreate(path)
	case ev.Has(fsnotify.Write):
		if !o.isTrackedDir(path) {
			o.updater.OnNewFile(path)
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		o.handleRemove(path)
	}
}

func (o *FSObserver) handleCreate(path string) {
	info, err := os.Stat(path)
	if err != nil {
		// already gone (create immediately followed by remove/rename); ignore
		return
	}
	if info.IsDir() {
		if err := o.watchTree(path); err != nil {
			nlog.Warningf("cannot watch new directory %s: %v", path, err)
		}
		o.includeNewDir(path)
		return
	}
	o.updater.OnNewFile(path)
}

// includeNewDir mirrors the "destination" half of on_moved_dir: a freshly
// appeared dataset directory or assembly directory is scanned for its
// metadata.yaml / *.parquet contents.
func (o *FSObserver) includeNewDir(dir string) {
	parent := filepath.Dir(dir)
	base := filepath.Base(dir)

	switch {
	case parent == o.dataDir:
		metadata := filepath.Join(dir, fname.Metadata)
		if _, err := os.Stat(metadata); err == nil {
			o.updater.OnNewFile(metadata)
		}
		for _, assembly := range []string{fname.GRCh37, fname.GRCh38} {
			assemblyDir := filepath.Join(dir, assembly)
			if st, err := os.Stat(assemblyDir); err == nil && st.IsDir() {
				o.updater.includeAssemblyDir(base, assemblyDir)
			}
		}
	case fname.IsBeaconAssembly(base):
		datasetID := filepath.Base(parent)
		o.updater.includeAssemblyDir(datasetID, dir)
	}
}

func (o *FSObserver) handleRemove(path string) {
	if o.isTrackedDir(path) {
		o.mu.Lock()
		delete(o.dirs, path)
		o.mu.Unlock()

		parent := filepath.Dir(path)
		base := filepath.Base(path)
		switch {
		case parent == o.dataDir:
			o.updater.reg.RemoveDataset(base, true)
		case fname.IsBeaconAssembly(base):
			datasetID := filepath.Base(parent)
			o.updater.reg.RemoveBeaconDataset(datasetID, base)
		}
		o.updater.reg.ForgetIssuesInDir(path)
		return
	}
	o.updater.OnRemovedFile(path)
}

func (o *FSObserver) isTrackedDir(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.dirs[path]
	return ok
}
