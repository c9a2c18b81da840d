package viewer

import (
	"context"
	"fmt"
	"math"
)

// DefaultPlaceholder is shown instead of a position when no image is on
// screen.
const DefaultPlaceholder = "Report"

const minThumbSize = 8.0

// NavStatus describes the navigation controls for the current state.
type NavStatus struct {
	Total              int
	Current            int
	Position           string
	PrevEnabled        bool
	NextEnabled        bool
	StackScrollEnabled bool
	ScrollbarVisible   bool
	// ThumbSize and ThumbOffset are percentages of the scrollbar track.
	ThumbSize   float64
	ThumbOffset float64
}

// computeNavStatus derives the controls from the navigation state. In
// textual mode a direction stays enabled only when a non-bad instance
// exists that way.
func computeNavStatus(total, current int, textual bool, bad map[int]bool, placeholder string) NavStatus {
	st := NavStatus{Total: total, Current: current}
	switch {
	case total == 0:
		st.Position = placeholder
	case textual:
		st.Position = placeholder
		for i := current - 1; i >= 0; i-- {
			if !bad[i] {
				st.PrevEnabled = true
				break
			}
		}
		for i := current + 1; i < total; i++ {
			if !bad[i] {
				st.NextEnabled = true
				break
			}
		}
	case total == 1:
		st.Position = "1 / 1"
	default:
		st.Position = fmt.Sprintf("%d / %d", current+1, total)
		st.PrevEnabled = current > 0
		st.NextEnabled = current < total-1
		st.StackScrollEnabled = true
		st.ScrollbarVisible = true
		st.ThumbSize = math.Max(minThumbSize, 100/float64(total))
		st.ThumbOffset = float64(current) / float64(total-1) * (100 - st.ThumbSize)
	}
	return st
}

// request identifies one selection or navigation. A completion whose
// request is no longer the latest is discarded.
type request struct {
	epoch uint64
	seq   uint64
}

// current reports whether r is still the latest request. Caller holds s.mu.
func (s *Session) current(r request) bool {
	return r.epoch == s.epoch && r.seq == s.seq
}

// newRequest starts a navigation request. Caller holds s.mu.
func (s *Session) newRequest() request {
	s.seq++
	return request{epoch: s.epoch, seq: s.seq}
}

// loadFirstValid shows the first instance that decodes, or the document
// view of instance 0 when none does.
func (s *Session) loadFirstValid(ctx context.Context, req request) {
	for i := 0; ; i++ {
		s.mu.Lock()
		if !s.current(req) {
			s.mu.Unlock()
			return
		}
		if i >= s.series.Len() {
			s.mu.Unlock()
			break
		}
		if s.bad[i] {
			s.mu.Unlock()
			continue
		}
		inst := s.series.Instances[i]
		s.mu.Unlock()

		if s.tryLoad(ctx, req, i, inst) {
			return
		}
	}
	s.showDocument(ctx, req, 0, DocumentTitleFallback)
}

// goTo shows instance index, skipping known-bad instances in direction dir
// and falling back to the document view when the stack is exhausted.
func (s *Session) goTo(ctx context.Context, req request, index, dir int) {
	if dir == 0 {
		dir = 1
	}
	for {
		s.mu.Lock()
		if !s.current(req) {
			s.mu.Unlock()
			return
		}
		total := s.series.Len()
		if index < 0 || index >= total {
			s.mu.Unlock()
			return
		}
		if s.bad[index] {
			next := index + dir
			s.mu.Unlock()
			if next < 0 || next >= total {
				return
			}
			index = next
			continue
		}
		inst := s.series.Instances[index]
		s.mu.Unlock()

		if s.tryLoad(ctx, req, index, inst) {
			return
		}

		next := index + dir
		if next < 0 || next >= total {
			s.showDocument(ctx, req, index, DocumentTitleFallback)
			return
		}
		index = next
	}
}

// tryLoad loads and displays one instance. It returns false when the
// instance failed to decode (and is now marked bad) or the display could not
// be prepared. A stale request returns true so callers stop.
func (s *Session) tryLoad(ctx context.Context, req request, index int, inst *Instance) bool {
	img, err := s.engine.Load(ctx, inst.Ref)

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.epoch != s.epoch {
		return true
	}
	if err != nil {
		s.bad[index] = true
		s.logf("instance %d of series %s cannot be decoded: %v\n", index+1, s.series.ID, err)
		return !s.current(req)
	}
	if !s.current(req) {
		return true
	}

	painted, err := s.life.display(img)
	if err != nil {
		s.logf("display instance %d: %v\n", index+1, err)
		return false
	}
	s.index = index
	s.document = nil
	s.calibration = ResolveSpacing(img)
	s.metadata = BuildMetadata(safeTags(img))
	s.gestures.SetPosition(index, s.series.ID)
	s.refreshNav()
	s.chainRedraw(painted)
	return true
}

// showDocument switches to the document view of instance index.
func (s *Session) showDocument(ctx context.Context, req request, index int, title string) {
	s.mu.Lock()
	if !s.current(req) {
		s.mu.Unlock()
		return
	}
	var src Source
	if index >= 0 && index < s.series.Len() {
		src = s.series.Instances[index].Source
	}
	s.mu.Unlock()

	doc := BuildDocument(ctx, s.parser, src, title)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(req) {
		return
	}
	s.life.enterTextual()
	s.index = index
	s.document = &doc
	s.metadata = doc.Metadata
	s.calibration = Uncalibrated
	s.overlay = Overlay{}
	s.gestures.SetPosition(index, s.series.ID)
	s.refreshNav()
	s.logf("series %s instance %d shown as text\n", s.series.ID, index+1)
}

// refreshNav recomputes the navigation controls. Caller holds s.mu.
func (s *Session) refreshNav() {
	textual := s.life.mode == ModeTextual
	s.nav = computeNavStatus(s.totalLocked(), s.index, textual, s.bad, s.placeholder)
}
