package ice

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Frame is what we are constructing at one level: the requested Key and the
// concrete Type chosen to satisfy it.
type Frame struct {
	Key      Key
	Resolved Type
}

func (f Frame) String() string {
	if f.Resolved.IsZero() || f.Resolved.Equal(f.Key.Type) {
		return f.Key.String()
	}
	return fmt.Sprintf("%v => %v", f.Key, f.Resolved)
}

// Path is the chain of constructions in flight for one Resolve call.
// It is immutable: Push returns a new Path and leaves the receiver untouched,
// so two resolutions sharing a prefix never see each other's frames.
// The nil *Path is the empty path.
type Path struct {
	frame Frame
	tail  *Path
	depth int
}

// Push returns p extended by one frame.
func (p *Path) Push(key Key, resolved Type) *Path {
	return &Path{frame: Frame{Key: key, Resolved: resolved}, tail: p, depth: p.Len() + 1}
}

// Len is the number of frames.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// Contains reports whether key is already being constructed on this path.
func (p *Path) Contains(key Key) bool {
	for n := p; n != nil; n = n.tail {
		if n.frame.Key.Equal(key) {
			return true
		}
	}
	return false
}

// Top is the most recent frame. ok is false for the empty path.
func (p *Path) Top() (f Frame, ok bool) {
	if p == nil {
		return Frame{}, false
	}
	return p.frame, true
}

// Frames returns the frames from the outermost request to the innermost.
func (p *Path) Frames() []Frame {
	frames := make([]Frame, p.Len())
	i := len(frames) - 1
	for n := p; n != nil; n = n.tail {
		frames[i] = n.frame
		i--
	}
	return frames
}

func (p *Path) String() string {
	frames := p.Frames()
	parts := make([]string, len(frames))
	for i, f := range frames {
		parts[i] = f.String()
	}
	return strings.Join(parts, " -> ")
}

// Log writes the constructor chain at info level.
func (p *Path) Log() {
	log.Info("ice stacktrace (constructor chain):")
	for _, f := range p.Frames() {
		log.Infof("\t%s", f)
	}
	log.Info("end ice stacktrace")
}
