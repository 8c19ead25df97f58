package sample

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"

	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/pitch"
)

var ErrNoSamples = errors.New("sample: no samples found")

// LoadDir decodes <pitch>.wav|.mp3|.ogg for every keyboard pitch found in
// dir. Files are decoded in parallel. Missing pitches are left out of the
// set; a file that fails to decode fails the whole load.
func LoadDir(dir string, rate int) (Set, error) {
	var (
		mu   sync.Mutex
		set  = make(Set)
		errs []error
	)
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for _, p := range pitch.All() {
		path, ok := FindFile(dir, p)
		if !ok {
			debug.Log("sample", "%s: no file in %s", p.Name, dir)
			continue
		}
		wg.Add()
		go func(name, path string) {
			defer wg.Done()
			smp, err := LoadFile(path, rate)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			smp.Name = name
			set[name] = smp
		}(p.Name, path)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSamples, dir)
	}
	debug.Log("sample", "loaded %d/%d pitches from %s (%s)", len(set), pitch.Len(), dir, humanize.Bytes(set.Bytes()))
	return set, nil
}
