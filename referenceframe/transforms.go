// Package referenceframe tracks the planar transforms between named frames, such as the
// vehicle body frame in the map frame, as they are reported by localization.
package referenceframe

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/laneplanner/spatialmath"
)

// Well known frame names.
const (
	MapFrame  = "map"
	BaseFrame = "base_link"
)

// TransformProvider answers where one frame sits in another.
type TransformProvider interface {
	CanTransform(target, source string) bool
	// Lookup returns the pose of the source frame's origin expressed in the target frame.
	Lookup(target, source string) (spatialmath.Pose, error)
}

// Transform is a reported pose of Child in Parent.
type Transform struct {
	Parent string           `json:"parent"`
	Child  string           `json:"child"`
	Pose   spatialmath.Pose `json:"pose"`
}

type edgeKey struct {
	parent, child string
}

type stampedPose struct {
	pose  spatialmath.Pose
	stamp time.Time
}

// TransformBuffer is a TransformProvider holding the latest transform for each parent/child
// pair. Lookups may chain through intermediate frames in either direction.
type TransformBuffer struct {
	mu     sync.RWMutex
	clock  clock.Clock
	maxAge time.Duration
	edges  map[edgeKey]stampedPose
	adj    map[string]map[string]struct{}
}

var _ TransformProvider = (*TransformBuffer)(nil)

// NewTransformBuffer returns an empty buffer. Transforms older than maxAge are ignored; a maxAge
// of zero keeps transforms forever. A nil clock uses the wall clock.
func NewTransformBuffer(clk clock.Clock, maxAge time.Duration) *TransformBuffer {
	if clk == nil {
		clk = clock.New()
	}
	return &TransformBuffer{
		clock:  clk,
		maxAge: maxAge,
		edges:  map[edgeKey]stampedPose{},
		adj:    map[string]map[string]struct{}{},
	}
}

// Update records the pose of child in parent, stamped now.
func (b *TransformBuffer) Update(parent, child string, pose spatialmath.Pose) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edges[edgeKey{parent, child}] = stampedPose{pose: pose, stamp: b.clock.Now()}
	b.link(parent, child)
	b.link(child, parent)
}

// Apply records a reported transform.
func (b *TransformBuffer) Apply(tf Transform) {
	b.Update(tf.Parent, tf.Child, tf.Pose)
}

func (b *TransformBuffer) link(from, to string) {
	if b.adj[from] == nil {
		b.adj[from] = map[string]struct{}{}
	}
	b.adj[from][to] = struct{}{}
}

// CanTransform reports whether Lookup would succeed.
func (b *TransformBuffer) CanTransform(target, source string) bool {
	_, err := b.Lookup(target, source)
	return err == nil
}

// Lookup returns the pose of source in target by walking the shortest chain of fresh
// transforms.
func (b *TransformBuffer) Lookup(target, source string) (spatialmath.Pose, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if target == source {
		return spatialmath.Pose{}, nil
	}

	now := b.clock.Now()
	prev := map[string]string{target: ""}
	queue := []string{target}
	for len(queue) > 0 && prev[source] == "" {
		cur := queue[0]
		queue = queue[1:]
		for next := range b.adj[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			if _, ok := b.fresh(cur, next, now); !ok {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	if _, found := prev[source]; !found {
		return spatialmath.Pose{}, NewTransformUnavailableError(target, source)
	}

	var chain []string
	for f := source; f != target; f = prev[f] {
		chain = append(chain, f)
	}
	result := spatialmath.Pose{}
	from := target
	for i := len(chain) - 1; i >= 0; i-- {
		step, _ := b.fresh(from, chain[i], now)
		result = spatialmath.Compose(result, step)
		from = chain[i]
	}
	return result, nil
}

// fresh returns the pose of to in from, inverting a stored edge when needed.
func (b *TransformBuffer) fresh(from, to string, now time.Time) (spatialmath.Pose, bool) {
	if sp, ok := b.edges[edgeKey{from, to}]; ok && b.alive(sp, now) {
		return sp.pose, true
	}
	if sp, ok := b.edges[edgeKey{to, from}]; ok && b.alive(sp, now) {
		return spatialmath.Invert(sp.pose), true
	}
	return spatialmath.Pose{}, false
}

func (b *TransformBuffer) alive(sp stampedPose, now time.Time) bool {
	return b.maxAge <= 0 || now.Sub(sp.stamp) <= b.maxAge
}
