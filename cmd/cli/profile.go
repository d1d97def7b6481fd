package cli

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
)

// profileFiles names successive profile files as <base>.001, <base>.002...
type profileFiles struct {
	base string
	seq  int
}

func (p *profileFiles) next() (*os.File, error) {
	p.seq += 1
	name := fmt.Sprintf("%s.%03d", p.base, p.seq)
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrapf(err, "FailToCreateProfile(file=%s)", name)
	}
	return f, nil
}

// onSignal calls fn from a goroutine each time the process gets sig.
func onSignal(sig os.Signal, fn func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, sig)
	go func() {
		for range c {
			fn()
		}
	}()
}

// StartCPUProfile starts CPU profiling. SIGUSR2 finishes the current file
// and continues with the next one.
func StartCPUProfile(filename string) error {
	if filename == "" {
		return errors.IllegalArgumentError.New("EmptyProfileName")
	}
	files := &profileFiles{base: filename}
	start := func() (*os.File, error) {
		f, err := files.next()
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "FailToStartCPUProfile")
		}
		return f, nil
	}
	cur, err := start()
	if err != nil {
		return err
	}
	onSignal(syscall.SIGUSR2, func() {
		pprof.StopCPUProfile()
		cur.Close()
		if cur, err = start(); err != nil {
			log.Panicf("Fail to restart CPU profile err=%+v", err)
		}
	})
	return nil
}

// StartMemoryProfile writes a heap profile on each SIGUSR1.
func StartMemoryProfile(filename string) error {
	if filename == "" {
		return errors.IllegalArgumentError.New("EmptyProfileName")
	}
	files := &profileFiles{base: filename}
	onSignal(syscall.SIGUSR1, func() {
		f, err := files.next()
		if err != nil {
			log.Warnf("Fail to write heap profile err=%+v", err)
			return
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Warnf("Fail to write heap profile err=%+v", err)
		}
	})
	return nil
}
